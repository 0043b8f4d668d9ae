package entity

// TaskStatus is the overall state of a generation task, derived from its clips.
type TaskStatus string

const (
	StatusQueued    TaskStatus = "queued"
	StatusStreaming TaskStatus = "streaming"
	StatusComplete  TaskStatus = "complete"
)

// Clip is one rendered audio variant belonging to a Task. The provider is
// authoritative for clip contents; the whole list is replaced on every
// successful poll.
type Clip struct {
	ID                   string  `json:"id"`
	Status               string  `json:"status"`
	Title                string  `json:"title"`
	Tags                 string  `json:"tags"`
	Prompt               string  `json:"prompt"`
	AudioURL             string  `json:"audio_url"`
	ImageLargeURL        string  `json:"image_large_url"`
	Duration             float64 `json:"duration"`
	GptDescriptionPrompt string  `json:"gpt_description_prompt,omitempty"`

	// Archive locations filled in once the clip media has been saved to the
	// configured storage backend. Empty until archived.
	AudioPath string `json:"audio_path,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// Task represents one generation job submitted to the provider.
type Task struct {
	// Seq orders tasks: higher sequence numbers were inserted later, and the
	// canonical list order is newest-first. Not part of the wire format.
	Seq uint `gorm:"primaryKey;autoIncrement" json:"-"`

	ID         string     `gorm:"uniqueIndex;size:64" json:"id"`
	Status     TaskStatus `gorm:"size:32" json:"status"`
	Clips      ClipList   `gorm:"type:text" json:"clips"`
	SubmitTime int64      `json:"submit_time"`
	Progress   string     `gorm:"size:16" json:"progress"`
	FailReason string     `json:"fail_reason"`

	// Creative mode carries a description prompt; custom mode carries the
	// lyrics/tags/title triple. Both live on the same record, selected by the
	// submission mode.
	GptDescriptionPrompt string `json:"gpt_description_prompt,omitempty"`
	Prompt               string `json:"prompt,omitempty"`
	Tags                 string `json:"tags,omitempty"`
	Title                string `json:"title,omitempty"`

	MakeInstrumental bool   `json:"make_instrumental"`
	Mv               string `gorm:"size:32" json:"mv"`

	// IsExpanded is a UI convenience flag, persisted but not load-bearing.
	IsExpanded bool `json:"isExpanded"`
}

// TableName keeps the singular table name convention.
func (Task) TableName() string { return "task" }

// Terminal reports whether the task needs no further polling: either every
// clip finished or a failure has been recorded.
func (t *Task) Terminal() bool {
	return t.Status == StatusComplete || t.FailReason != ""
}

// Clone returns a deep copy, so callers can hand tasks out without exposing
// the store's internal state.
func (t *Task) Clone() Task {
	out := *t
	out.Clips = t.Clips.Clone()
	return out
}

// DeriveStatus recomputes the overall task status from a clip list. The rule
// is total and idempotent: complete when clips exist and all of them are
// complete, streaming when any clip is streaming, queued otherwise.
func DeriveStatus(clips []Clip) TaskStatus {
	if len(clips) == 0 {
		return StatusQueued
	}
	allComplete := true
	anyStreaming := false
	for _, clip := range clips {
		switch clip.Status {
		case string(StatusComplete):
		case string(StatusStreaming):
			allComplete = false
			anyStreaming = true
		default:
			allComplete = false
		}
	}
	if allComplete {
		return StatusComplete
	}
	if anyStreaming {
		return StatusStreaming
	}
	return StatusQueued
}
