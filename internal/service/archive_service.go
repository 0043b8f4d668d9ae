package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"sunotrack/internal/entity"
	"sunotrack/internal/storage"
	"sunotrack/internal/store"

	"github.com/sirupsen/logrus"
)

// maxClipDownload caps one media download at 200 MB.
const maxClipDownload = 200 << 20

// ArchiveService copies finished clip media (audio plus cover image) from the
// provider's CDN into the configured storage backend and records the stored
// locations on the clip. Archiving is best-effort: failures are logged and
// retried on a later cycle, and never mark the task as failed.
type ArchiveService struct {
	store      *store.Store
	storage    storage.Storage
	httpClient *http.Client
}

// NewArchiveService 创建归档服务实例
func NewArchiveService(st *store.Store, backend storage.Storage) *ArchiveService {
	return &ArchiveService{
		store:   st,
		storage: backend,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// ArchiveClips saves every complete, not-yet-archived clip of the task.
func (a *ArchiveService) ArchiveClips(ctx context.Context, taskID string) {
	if a == nil || a.storage == nil {
		return
	}
	task, ok := a.store.Task(taskID)
	if !ok {
		return
	}

	clips := task.Clips.Clone()
	changed := false
	for i := range clips {
		if clips[i].Status != string(entity.StatusComplete) {
			continue
		}
		if a.archiveClip(ctx, taskID, &clips[i]) {
			changed = true
		}
	}
	if !changed {
		return
	}

	if err := a.store.UpdateTask(ctx, taskID, entity.TaskUpdates{Clips: &clips}); err != nil {
		logrus.WithError(err).WithField("task_id", taskID).Error("failed to record archive locations")
	}
}

// archiveClip downloads the clip's media and reports whether anything new was
// stored.
func (a *ArchiveService) archiveClip(ctx context.Context, taskID string, clip *entity.Clip) bool {
	changed := false

	if clip.AudioPath == "" && clip.AudioURL != "" {
		stored, err := a.saveFromURL(ctx, clip.AudioURL, storage.SaveOptions{
			TaskID:       taskID,
			ClipID:       clip.ID,
			Kind:         storage.KindAudio,
			Extension:    extensionOf(clip.AudioURL, "mp3"),
			ContentType:  "audio/mpeg",
			SkipIfExists: true,
		})
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"task_id": taskID,
				"clip_id": clip.ID,
			}).Warn("failed to archive clip audio")
		} else {
			clip.AudioPath = stored
			changed = true
		}
	}

	if clip.ImagePath == "" && clip.ImageLargeURL != "" {
		stored, err := a.saveFromURL(ctx, clip.ImageLargeURL, storage.SaveOptions{
			TaskID:       taskID,
			ClipID:       clip.ID,
			Kind:         storage.KindCover,
			Extension:    extensionOf(clip.ImageLargeURL, "jpeg"),
			ContentType:  "image/jpeg",
			SkipIfExists: true,
		})
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"task_id": taskID,
				"clip_id": clip.ID,
			}).Warn("failed to archive clip cover")
		} else {
			clip.ImagePath = stored
			changed = true
		}
	}

	return changed
}

func (a *ArchiveService) saveFromURL(ctx context.Context, rawURL string, opts storage.SaveOptions) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipDownload))
	if err != nil {
		return "", fmt.Errorf("read download: %w", err)
	}

	return a.storage.Save(ctx, data, opts)
}

// extensionOf extracts a plausible file extension from the URL path.
func extensionOf(rawURL, fallback string) string {
	ext := strings.TrimPrefix(path.Ext(strings.SplitN(rawURL, "?", 2)[0]), ".")
	if ext == "" || len(ext) > 5 {
		return fallback
	}
	return ext
}
