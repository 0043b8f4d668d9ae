package store

import (
	"context"
	"testing"

	"sunotrack/internal/entity"
)

func TestAddCreativeHistoryItem(t *testing.T) {
	s := newMemoryStore(t, Seed{})
	ctx := context.Background()

	for _, prompt := range []string{"first prompt", "second prompt", "first prompt"} {
		if err := s.AddCreativeHistoryItem(ctx, prompt); err != nil {
			t.Fatalf("AddCreativeHistoryItem() error = %v", err)
		}
	}

	history := s.CreativeHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %v", history)
	}
	if history[0] != "first prompt" || history[1] != "second prompt" {
		t.Errorf("resubmitted prompt should lead: %v", history)
	}
}

func TestAddCreativeHistoryItemIgnoresBlank(t *testing.T) {
	s := newMemoryStore(t, Seed{})
	if err := s.AddCreativeHistoryItem(context.Background(), "   "); err != nil {
		t.Fatalf("AddCreativeHistoryItem() error = %v", err)
	}
	if len(s.CreativeHistory()) != 0 {
		t.Error("blank prompt was recorded")
	}
}

func TestAddCustomHistoryItem(t *testing.T) {
	s := newMemoryStore(t, Seed{})
	ctx := context.Background()

	item := entity.CustomHistoryItem{Prompt: "verse one", Tags: "pop", Title: "Demo"}
	other := entity.CustomHistoryItem{Prompt: "verse one", Tags: "rock", Title: "Demo"}

	_ = s.AddCustomHistoryItem(ctx, item)
	_ = s.AddCustomHistoryItem(ctx, other)
	_ = s.AddCustomHistoryItem(ctx, item)

	history := s.CustomHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %v", history)
	}
	if !history[0].Equal(item) || !history[1].Equal(other) {
		t.Errorf("unexpected order: %+v", history)
	}

	if err := s.AddCustomHistoryItem(ctx, entity.CustomHistoryItem{}); err != nil {
		t.Fatalf("AddCustomHistoryItem(blank) error = %v", err)
	}
	if len(s.CustomHistory()) != 2 {
		t.Error("blank item was recorded")
	}
}

func TestHistoryReadsAreCopies(t *testing.T) {
	s := newMemoryStore(t, Seed{})
	_ = s.AddCreativeHistoryItem(context.Background(), "keep me")

	history := s.CreativeHistory()
	history[0] = "mutated"

	if got := s.CreativeHistory()[0]; got != "keep me" {
		t.Errorf("caller mutation leaked: %q", got)
	}
}
