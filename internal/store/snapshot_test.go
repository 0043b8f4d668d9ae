package store

import (
	"context"
	"encoding/json"
	"testing"

	"sunotrack/internal/entity"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newMemoryStore(t, Seed{BaseURL: "https://api.example.com", APIKey: "sk-test", PollInterval: 5})

	_ = source.AddTask(ctx, entity.Task{ID: "task-1", Status: entity.StatusComplete, SubmitTime: 100, Clips: entity.ClipList{{ID: "clip-1", Status: "complete", Title: "Sunset Drive"}}})
	_ = source.AddTask(ctx, entity.Task{ID: "task-2", Status: entity.StatusQueued, SubmitTime: 200})
	_ = source.AddCreativeHistoryItem(ctx, "an upbeat synthwave track")
	_ = source.AddCustomHistoryItem(ctx, entity.CustomHistoryItem{Prompt: "verse one", Tags: "pop", Title: "Demo"})

	exported := source.ExportSnapshot()

	// Round-trip through JSON the way the HTTP layer does.
	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	parsed, err := entity.ParseSnapshot(raw)
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}

	target := newMemoryStore(t, Seed{})
	if err := target.ImportSnapshot(ctx, parsed); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	settings := target.Settings()
	if settings.BaseURL != "https://api.example.com" || settings.APIKey != "sk-test" || settings.PollInterval != 5 {
		t.Errorf("settings not imported: %+v", settings)
	}

	tasks := target.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "task-2" || tasks[1].ID != "task-1" {
		t.Errorf("task order not preserved: %v, %v", tasks[0].ID, tasks[1].ID)
	}
	if len(tasks[1].Clips) != 1 || tasks[1].Clips[0].Title != "Sunset Drive" {
		t.Errorf("clips not imported: %+v", tasks[1].Clips)
	}

	if history := target.CreativeHistory(); len(history) != 1 || history[0] != "an upbeat synthwave track" {
		t.Errorf("creative history not imported: %v", history)
	}
	if history := target.CustomHistory(); len(history) != 1 || history[0].Title != "Demo" {
		t.Errorf("custom history not imported: %+v", history)
	}
}

func TestImportSnapshotReplacesExistingState(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t, Seed{BaseURL: "https://old.example.com", APIKey: "sk-old"})
	_ = s.AddTask(ctx, entity.Task{ID: "stale-task"})
	_ = s.AddCreativeHistoryItem(ctx, "stale prompt")

	err := s.ImportSnapshot(ctx, &entity.Snapshot{
		BaseURL:           "https://new.example.com",
		APIKey:            "sk-new",
		AutoCheckInterval: 9,
		Tasks:             []entity.Task{{ID: "fresh-task", Status: entity.StatusQueued}},
	})
	if err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "fresh-task" {
		t.Errorf("old tasks survived the import: %+v", tasks)
	}
	if len(s.CreativeHistory()) != 0 {
		t.Error("old history survived the import")
	}
	settings := s.Settings()
	if settings.BaseURL != "https://new.example.com" || settings.PollInterval != 9 {
		t.Errorf("settings not replaced: %+v", settings)
	}
}

func TestExportSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t, Seed{})
	_ = s.AddTask(ctx, entity.Task{ID: "task-1", Clips: entity.ClipList{{ID: "clip-1", Status: "streaming"}}})

	snapshot := s.ExportSnapshot()
	snapshot.Tasks[0].Clips[0].Status = "complete"

	task, _ := s.Task("task-1")
	if task.Clips[0].Status != "streaming" {
		t.Error("snapshot shares clip storage with the store")
	}
}
