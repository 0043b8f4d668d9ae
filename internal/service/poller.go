package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"sunotrack/internal/entity"
	"sunotrack/internal/store"
	"sunotrack/internal/suno"

	"github.com/sirupsen/logrus"
)

// idleRecheck is how often a disabled poller re-reads the settings so that
// enabling the interval takes effect without a restart.
const idleRecheck = time.Second

// Poller periodically refreshes every non-terminal task by fetching its
// status from the provider and merging the result into the store. Fetches
// within a cycle run concurrently and independently: one task's failure never
// blocks the others.
type Poller struct {
	store   *store.Store
	archive *ArchiveService // optional

	now       func() time.Time
	newClient func(baseURL, apiKey string) ProviderClient

	refresh chan struct{}

	// inFlight suppresses a second fetch for a task whose previous fetch has
	// not settled yet.
	inFlightMu sync.Mutex
	inFlight   map[string]struct{}

	// cycleErrFunc surfaces cycle-level errors (missing configuration) to the
	// user, set by the API layer.
	cycleErrFunc func(message string)
}

// NewPoller 创建轮询协调器。archive 可以为 nil（关闭归档）。
func NewPoller(st *store.Store, archive *ArchiveService) *Poller {
	return &Poller{
		store:   st,
		archive: archive,
		now:     time.Now,
		newClient: func(baseURL, apiKey string) ProviderClient {
			return suno.NewClient(baseURL, apiKey)
		},
		refresh:  make(chan struct{}, 1),
		inFlight: make(map[string]struct{}),
	}
}

// SetCycleErrorFunc 设置周期级错误通知函数（用于 SSE 推送）
func (p *Poller) SetCycleErrorFunc(fn func(message string)) {
	p.cycleErrFunc = fn
}

// RefreshNow triggers one immediate cycle, coalescing with a pending trigger.
func (p *Poller) RefreshNow() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run drives the poll loop until the context is cancelled. The interval is
// re-read from the settings at every scheduling decision, so changes apply on
// the next tick and an interval of 0 pauses the timer without stopping the
// loop (manual refresh keeps working).
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(p.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.refresh:
			p.RunCycle(ctx)
		case <-timer.C:
			if p.store.Settings().PollInterval > 0 {
				p.RunCycle(ctx)
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.nextDelay())
	}
}

func (p *Poller) nextDelay() time.Duration {
	interval := p.store.Settings().PollInterval
	if interval <= 0 {
		return idleRecheck
	}
	return time.Duration(interval) * time.Second
}

// RunCycle refreshes all non-terminal tasks once and waits for every fetch of
// the cycle to settle. The whole cycle aborts with a user-visible error when
// the provider endpoint or credential is missing.
func (p *Poller) RunCycle(ctx context.Context) {
	settings := p.store.Settings()
	if !settings.Configured() {
		logrus.Warn("poll cycle skipped: provider not configured")
		if p.cycleErrFunc != nil {
			p.cycleErrFunc("set the provider base URL and API key before refreshing")
		}
		return
	}

	var pending []entity.Task
	for _, task := range p.store.Tasks() {
		if !task.Terminal() {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return
	}

	client := p.newClient(settings.BaseURL, settings.APIKey)

	var wg sync.WaitGroup
	for _, task := range pending {
		if !p.markInFlight(task.ID) {
			continue
		}
		wg.Add(1)
		go func(task entity.Task) {
			defer wg.Done()
			defer p.clearInFlight(task.ID)
			p.refreshTask(ctx, client, task)
		}(task)
	}
	wg.Wait()
}

func (p *Poller) markInFlight(id string) bool {
	p.inFlightMu.Lock()
	defer p.inFlightMu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Poller) clearInFlight(id string) {
	p.inFlightMu.Lock()
	defer p.inFlightMu.Unlock()
	delete(p.inFlight, id)
}

// refreshTask fetches one task's remote status and merges it. On any fetch
// failure only the task's fail reason is written; status, clips and progress
// keep their previous values until the next successful poll.
func (p *Poller) refreshTask(ctx context.Context, client ProviderClient, task entity.Task) {
	fetched, err := client.Fetch(ctx, task.ID)
	if err != nil {
		// A cancelled run context means shutdown, not a provider failure; the
		// task stays pending for the next process.
		if errors.Is(err, context.Canceled) {
			return
		}
		logrus.WithError(err).WithField("task_id", task.ID).Warn("failed to fetch task status")
		reason := "failed to fetch status: " + err.Error()
		if updateErr := p.store.UpdateTask(ctx, task.ID, entity.TaskUpdates{FailReason: &reason}); updateErr != nil {
			logrus.WithError(updateErr).WithField("task_id", task.ID).Error("failed to record fetch failure")
		}
		return
	}

	clips := make(entity.ClipList, 0, len(fetched.Data))
	for _, wire := range fetched.Data {
		clip := entity.Clip{
			ID:                   wire.ClipID,
			Status:               wire.Status,
			Title:                wire.Title,
			Tags:                 wire.Tags,
			Prompt:               wire.Prompt,
			AudioURL:             wire.AudioURL,
			ImageLargeURL:        wire.ImageLargeURL,
			Duration:             wire.Duration,
			GptDescriptionPrompt: wire.GptDescriptionPrompt,
		}
		// Clips are replaced wholesale, so archive locations recorded on the
		// previous copy are carried over by clip id.
		for _, previous := range task.Clips {
			if previous.ID == clip.ID {
				clip.AudioPath = previous.AudioPath
				clip.ImagePath = previous.ImagePath
				break
			}
		}
		clips = append(clips, clip)
	}

	status := entity.DeriveStatus(clips)
	updates := entity.TaskUpdates{
		Status:     &status,
		Progress:   &fetched.Progress,
		Clips:      &clips,
		FailReason: &fetched.FailReason,
	}
	if err := p.store.UpdateTask(ctx, task.ID, updates); err != nil {
		logrus.WithError(err).WithField("task_id", task.ID).Error("failed to merge task status")
		return
	}

	logrus.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"status":   status,
		"progress": fetched.Progress,
		"clips":    len(clips),
	}).Debug("task status merged")

	if status == entity.StatusComplete {
		p.autoRename(ctx, task, clips)
	}
	if p.archive != nil {
		p.archive.ArchiveClips(ctx, task.ID)
	}
}

// autoRename titles an untitled task after its first finished clip once the
// whole task is complete. Only active when the setting is on.
func (p *Poller) autoRename(ctx context.Context, task entity.Task, clips entity.ClipList) {
	if !p.store.Settings().AutoRename || task.Title != "" {
		return
	}
	for _, clip := range clips {
		if clip.Title != "" {
			if err := p.store.RenameTask(ctx, task.ID, clip.Title); err != nil {
				logrus.WithError(err).WithField("task_id", task.ID).Warn("auto-rename failed")
			}
			return
		}
	}
}
