package store

import (
	"context"

	"sunotrack/internal/entity"
)

// ExportSnapshot returns a serializable deep copy of the whole store state.
func (s *Store) ExportSnapshot() entity.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	creative := make([]string, len(s.creativeHistory))
	copy(creative, s.creativeHistory)
	custom := make([]entity.CustomHistoryItem, len(s.customHistory))
	copy(custom, s.customHistory)

	return entity.Snapshot{
		BaseURL:           s.settings.BaseURL,
		APIKey:            s.settings.APIKey,
		Tasks:             cloneTasks(s.tasks),
		AutoCheckInterval: s.settings.PollInterval,
		AutoRename:        s.settings.AutoRename,
		CreativeHistory:   creative,
		CustomHistory:     custom,
	}
}

// ImportSnapshot replaces settings, tasks and histories wholesale with the
// snapshot contents. Validation has already happened in ParseSnapshot; this
// method persists everything before swapping the in-memory state, so a
// repository failure leaves the store observably unchanged.
func (s *Store) ImportSnapshot(ctx context.Context, snapshot *entity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := entity.Settings{
		ID:           1,
		BaseURL:      snapshot.BaseURL,
		APIKey:       snapshot.APIKey,
		PollInterval: snapshot.AutoCheckInterval,
		AutoRename:   snapshot.AutoRename,
	}
	tasks := make([]entity.Task, len(snapshot.Tasks))
	for i := range snapshot.Tasks {
		tasks[i] = snapshot.Tasks[i].Clone()
		tasks[i].Seq = 0
	}

	if s.repo != nil {
		if err := s.repo.SaveSettings(ctx, &settings); err != nil {
			return err
		}
		if err := s.repo.ReplaceTasks(ctx, tasks); err != nil {
			return err
		}
		if err := s.repo.SaveHistory(ctx, &entity.History{
			ID:       1,
			Creative: snapshot.CreativeHistory,
			Custom:   snapshot.CustomHistory,
		}); err != nil {
			return err
		}
	}

	s.settings = settings
	s.tasks = tasks
	s.creativeHistory = append([]string(nil), snapshot.CreativeHistory...)
	s.customHistory = append([]entity.CustomHistoryItem(nil), snapshot.CustomHistory...)
	s.notify(EventStateImported, "")
	return nil
}
