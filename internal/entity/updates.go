package entity

// TaskUpdates carries a partial task update: nil fields are left untouched by
// Apply. ID and SubmitTime are deliberately absent, they never change after
// creation.
type TaskUpdates struct {
	Status     *TaskStatus
	Progress   *string
	Clips      *ClipList
	FailReason *string
	Title      *string
	IsExpanded *bool
}

// Apply merges the set fields into the task.
func (u TaskUpdates) Apply(t *Task) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Progress != nil {
		t.Progress = *u.Progress
	}
	if u.Clips != nil {
		t.Clips = u.Clips.Clone()
	}
	if u.FailReason != nil {
		t.FailReason = *u.FailReason
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.IsExpanded != nil {
		t.IsExpanded = *u.IsExpanded
	}
}

// Empty reports whether no field is set.
func (u TaskUpdates) Empty() bool {
	return u.Status == nil && u.Progress == nil && u.Clips == nil &&
		u.FailReason == nil && u.Title == nil && u.IsExpanded == nil
}
