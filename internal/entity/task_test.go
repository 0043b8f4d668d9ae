package entity

import "testing"

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		clips []Clip
		want  TaskStatus
	}{
		{
			name:  "no clips yet",
			clips: nil,
			want:  StatusQueued,
		},
		{
			name:  "empty clip list",
			clips: []Clip{},
			want:  StatusQueued,
		},
		{
			name: "all complete",
			clips: []Clip{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "complete"},
			},
			want: StatusComplete,
		},
		{
			name: "one streaming one complete",
			clips: []Clip{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "streaming"},
			},
			want: StatusStreaming,
		},
		{
			name: "all streaming",
			clips: []Clip{
				{ID: "a", Status: "streaming"},
				{ID: "b", Status: "streaming"},
			},
			want: StatusStreaming,
		},
		{
			name: "only queued clips",
			clips: []Clip{
				{ID: "a", Status: "queued"},
				{ID: "b", Status: "submitted"},
			},
			want: StatusQueued,
		},
		{
			name: "unknown status counts as queued",
			clips: []Clip{
				{ID: "a", Status: "error"},
			},
			want: StatusQueued,
		},
		{
			name: "mix without streaming stays queued",
			clips: []Clip{
				{ID: "a", Status: "complete"},
				{ID: "b", Status: "queued"},
			},
			want: StatusQueued,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.clips); got != tt.want {
				t.Errorf("DeriveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	clips := []Clip{
		{ID: "a", Status: "streaming"},
		{ID: "b", Status: "complete"},
	}
	first := DeriveStatus(clips)
	second := DeriveStatus(clips)
	if first != second {
		t.Errorf("DeriveStatus not stable: %q then %q", first, second)
	}
}

func TestTaskTerminal(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "queued", task: Task{Status: StatusQueued}, want: false},
		{name: "streaming", task: Task{Status: StatusStreaming}, want: false},
		{name: "complete", task: Task{Status: StatusComplete}, want: true},
		{name: "failed while queued", task: Task{Status: StatusQueued, FailReason: "boom"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	original := Task{
		ID:     "task-1",
		Status: StatusStreaming,
		Clips:  ClipList{{ID: "clip-1", Status: "streaming"}},
	}

	clone := original.Clone()
	clone.Clips[0].Status = "complete"

	if original.Clips[0].Status != "streaming" {
		t.Errorf("mutating clone leaked into original: %q", original.Clips[0].Status)
	}
}

func TestTaskUpdatesApply(t *testing.T) {
	status := StatusComplete
	progress := "100%"
	clips := ClipList{{ID: "clip-1", Status: "complete"}}

	task := Task{
		ID:         "task-1",
		Status:     StatusStreaming,
		Progress:   "40%",
		SubmitTime: 1234,
		Title:      "keep me",
	}

	TaskUpdates{Status: &status, Progress: &progress, Clips: &clips}.Apply(&task)

	if task.Status != StatusComplete || task.Progress != "100%" {
		t.Errorf("status/progress not applied: %+v", task)
	}
	if len(task.Clips) != 1 || task.Clips[0].ID != "clip-1" {
		t.Errorf("clips not replaced: %+v", task.Clips)
	}
	if task.Title != "keep me" {
		t.Errorf("unset field was touched: %q", task.Title)
	}
	if task.SubmitTime != 1234 {
		t.Errorf("submit time changed: %d", task.SubmitTime)
	}

	// Applied clip list must be its own copy.
	clips[0].Status = "streaming"
	if task.Clips[0].Status != "complete" {
		t.Error("applied clips share backing array with the update")
	}
}

func TestTaskUpdatesEmpty(t *testing.T) {
	if !(TaskUpdates{}).Empty() {
		t.Error("zero updates should be empty")
	}
	title := "x"
	if (TaskUpdates{Title: &title}).Empty() {
		t.Error("updates with a title should not be empty")
	}
}
