package store

import (
	"context"
	"strings"
	"sync"

	"sunotrack/internal/entity"
	"sunotrack/internal/model"

	"github.com/sirupsen/logrus"
)

// Event names delivered to the notify callback.
const (
	EventTaskAdded      = "task_added"
	EventTaskUpdated    = "task_updated"
	EventTaskDeleted    = "task_deleted"
	EventSettingsSaved  = "settings_saved"
	EventStateImported  = "state_imported"
	EventHistoryChanged = "history_changed"
)

// Store is the single source of truth for settings, the task list and both
// prompt histories. All mutation goes through its methods, guarded by one
// mutex, and every change that touches persisted state is written through to
// the repository before the call returns. A nil repository keeps the store
// memory-only, which the tests rely on.
type Store struct {
	mu   sync.Mutex
	repo model.Repository

	settings        entity.Settings
	tasks           []entity.Task // canonical order: newest submission first
	creativeHistory []string
	customHistory   []entity.CustomHistoryItem

	// notifyFunc 用于推送状态变化事件（由调用方设置）
	notifyFunc func(event string, taskID string)
}

// New creates a store over the given repository. Call Load before use.
func New(repo model.Repository) *Store {
	return &Store{repo: repo}
}

// SetNotifyFunc 设置通知函数（用于 SSE 推送）
func (s *Store) SetNotifyFunc(fn func(event string, taskID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyFunc = fn
}

// Seed carries the initial settings applied when the database has none yet.
type Seed struct {
	BaseURL      string
	APIKey       string
	PollInterval int
	AutoRename   bool
}

// Load reads the persisted state once at startup. A missing settings row is
// initialised from the seed and written back.
func (s *Store) Load(ctx context.Context, seed Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		s.settings = entity.Settings{
			BaseURL:      seed.BaseURL,
			APIKey:       seed.APIKey,
			PollInterval: seed.PollInterval,
			AutoRename:   seed.AutoRename,
		}
		return nil
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &entity.Settings{
			BaseURL:      seed.BaseURL,
			APIKey:       seed.APIKey,
			PollInterval: seed.PollInterval,
			AutoRename:   seed.AutoRename,
		}
		if err := s.repo.SaveSettings(ctx, settings); err != nil {
			return err
		}
		logrus.Info("settings seeded from environment")
	}
	s.settings = *settings

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return err
	}
	s.tasks = tasks

	history, err := s.repo.GetHistory(ctx)
	if err != nil {
		return err
	}
	if history != nil {
		s.creativeHistory = history.Creative
		s.customHistory = history.Custom
	}
	return nil
}

func (s *Store) notify(event, taskID string) {
	if s.notifyFunc != nil {
		s.notifyFunc(event, taskID)
	}
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Tasks returns a deep copy of the task list in canonical order.
func (s *Store) Tasks() []entity.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (entity.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.tasks[i].Clone(), true
		}
	}
	return entity.Task{}, false
}

// SetBaseURL overwrites the provider base URL.
func (s *Store) SetBaseURL(ctx context.Context, url string) error {
	return s.mutateSettings(ctx, func(settings *entity.Settings) {
		settings.BaseURL = url
	})
}

// SetAPIKey overwrites the provider credential.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	return s.mutateSettings(ctx, func(settings *entity.Settings) {
		settings.APIKey = key
	})
}

// SetPollInterval overwrites the auto-check interval in seconds; 0 disables
// polling. The change takes effect at the poller's next scheduling decision.
func (s *Store) SetPollInterval(ctx context.Context, seconds int) error {
	return s.mutateSettings(ctx, func(settings *entity.Settings) {
		settings.PollInterval = seconds
	})
}

// SetAutoRename toggles automatic titling of completed tasks.
func (s *Store) SetAutoRename(ctx context.Context, enabled bool) error {
	return s.mutateSettings(ctx, func(settings *entity.Settings) {
		settings.AutoRename = enabled
	})
}

func (s *Store) mutateSettings(ctx context.Context, change func(*entity.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.settings
	change(&updated)
	if s.repo != nil {
		if err := s.repo.SaveSettings(ctx, &updated); err != nil {
			return err
		}
	}
	s.settings = updated
	s.notify(EventSettingsSaved, "")
	return nil
}

// AddTask inserts the task at the front of the list with IsExpanded forced
// on. The caller guarantees id uniqueness (the provider assigns ids).
func (s *Store) AddTask(ctx context.Context, task entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.IsExpanded = true
	if s.repo != nil {
		if err := s.repo.CreateTask(ctx, &task); err != nil {
			return err
		}
	}
	s.tasks = append([]entity.Task{task}, s.tasks...)
	s.notify(EventTaskAdded, task.ID)
	return nil
}

// UpdateTask shallow-merges the set fields into the task with the matching
// id. Unknown ids are a no-op; ID and SubmitTime are never touched.
func (s *Store) UpdateTask(ctx context.Context, id string, updates entity.TaskUpdates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if updates.Empty() {
		return nil
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	merged := s.tasks[idx].Clone()
	updates.Apply(&merged)
	if s.repo != nil {
		if err := s.repo.UpdateTask(ctx, id, columnUpdates(updates)); err != nil {
			return err
		}
	}
	s.tasks[idx] = merged
	s.notify(EventTaskUpdated, id)
	return nil
}

// DeleteTask removes the task with the matching id; absent ids are a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	if s.repo != nil {
		if err := s.repo.DeleteTask(ctx, id); err != nil {
			return err
		}
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.notify(EventTaskDeleted, id)
	return nil
}

// RenameTask sets the task title. A blank title after trimming, or an absent
// id, is a no-op.
func (s *Store) RenameTask(ctx context.Context, id, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil
	}
	return s.UpdateTask(ctx, id, entity.TaskUpdates{Title: &newTitle})
}

// ToggleTaskExpansion flips the task's expansion flag.
func (s *Store) ToggleTaskExpansion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	flipped := !s.tasks[idx].IsExpanded
	if s.repo != nil {
		if err := s.repo.UpdateTask(ctx, id, map[string]interface{}{"is_expanded": flipped}); err != nil {
			return err
		}
	}
	s.tasks[idx].IsExpanded = flipped
	s.notify(EventTaskUpdated, id)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// columnUpdates maps set fields of a partial update onto repository column
// names.
func columnUpdates(updates entity.TaskUpdates) map[string]interface{} {
	columns := make(map[string]interface{})
	if updates.Status != nil {
		columns["status"] = *updates.Status
	}
	if updates.Progress != nil {
		columns["progress"] = *updates.Progress
	}
	if updates.Clips != nil {
		columns["clips"] = *updates.Clips
	}
	if updates.FailReason != nil {
		columns["fail_reason"] = *updates.FailReason
	}
	if updates.Title != nil {
		columns["title"] = *updates.Title
	}
	if updates.IsExpanded != nil {
		columns["is_expanded"] = *updates.IsExpanded
	}
	return columns
}

func cloneTasks(tasks []entity.Task) []entity.Task {
	out := make([]entity.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
