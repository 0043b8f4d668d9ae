package store

import (
	"context"
	"strings"

	"sunotrack/internal/entity"
)

// AddCreativeHistoryItem records a creative prompt: dedup by exact string,
// promote to the front, cap at the history limit. Blank prompts are ignored.
func (s *Store) AddCreativeHistoryItem(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := entity.PromoteString(s.creativeHistory, prompt)
	if err := s.persistHistory(ctx, updated, s.customHistory); err != nil {
		return err
	}
	s.creativeHistory = updated
	s.notify(EventHistoryChanged, "")
	return nil
}

// AddCustomHistoryItem records a custom-mode submission: dedup by the exact
// field triple, promote, cap. Fully blank items are ignored.
func (s *Store) AddCustomHistoryItem(ctx context.Context, item entity.CustomHistoryItem) error {
	if item.Blank() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := entity.PromoteCustom(s.customHistory, item)
	if err := s.persistHistory(ctx, s.creativeHistory, updated); err != nil {
		return err
	}
	s.customHistory = updated
	s.notify(EventHistoryChanged, "")
	return nil
}

// CreativeHistory returns a copy of the creative recall list, most recent
// first. Reading never reorders.
func (s *Store) CreativeHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.creativeHistory))
	copy(out, s.creativeHistory)
	return out
}

// CustomHistory returns a copy of the custom recall list, most recent first.
func (s *Store) CustomHistory() []entity.CustomHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.CustomHistoryItem, len(s.customHistory))
	copy(out, s.customHistory)
	return out
}

// persistHistory is called with the lock held.
func (s *Store) persistHistory(ctx context.Context, creative []string, custom []entity.CustomHistoryItem) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.SaveHistory(ctx, &entity.History{
		ID:       1,
		Creative: creative,
		Custom:   custom,
	})
}
