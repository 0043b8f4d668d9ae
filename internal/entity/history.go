package entity

import "strings"

// HistoryLimit caps each recall list at the 50 most recent entries.
const HistoryLimit = 50

// CustomHistoryItem is one remembered custom-mode submission.
type CustomHistoryItem struct {
	Prompt string `json:"prompt"`
	Tags   string `json:"tags"`
	Title  string `json:"title"`
}

// Equal compares by the exact field triple.
func (i CustomHistoryItem) Equal(other CustomHistoryItem) bool {
	return i.Prompt == other.Prompt && i.Tags == other.Tags && i.Title == other.Title
}

// Blank reports whether all three fields are empty after trimming. Blank
// submissions are not recorded.
func (i CustomHistoryItem) Blank() bool {
	return strings.TrimSpace(i.Prompt) == "" &&
		strings.TrimSpace(i.Tags) == "" &&
		strings.TrimSpace(i.Title) == ""
}

// History is the single database row holding both recall lists. The store
// rewrites the affected column wholesale on every change, which keeps the
// dedup-and-promote ordering exactly as it is in memory.
type History struct {
	ID       uint              `gorm:"primaryKey"`
	Creative StringArray       `gorm:"type:text"`
	Custom   CustomHistoryList `gorm:"type:text"`
}

// TableName keeps the singular table name convention.
func (History) TableName() string { return "history" }

// PromoteString prepends value to list after removing any existing exact
// occurrence, then truncates to HistoryLimit. The input slice is not mutated.
func PromoteString(list []string, value string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, value)
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}

// PromoteCustom is PromoteString for custom history records, using triple
// equality.
func PromoteCustom(list []CustomHistoryItem, item CustomHistoryItem) []CustomHistoryItem {
	out := make([]CustomHistoryItem, 0, len(list)+1)
	out = append(out, item)
	for _, existing := range list {
		if !existing.Equal(item) {
			out = append(out, existing)
		}
	}
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}
