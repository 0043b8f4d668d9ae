package entity

// Settings is the process-wide configuration record: where the provider
// lives, how to authenticate, and how often to poll. A single row is kept in
// the database and mutated only through the store's setters.
type Settings struct {
	ID uint `gorm:"primaryKey" json:"-"`

	BaseURL string `gorm:"size:512" json:"baseUrl"`
	APIKey  string `gorm:"size:512" json:"apiKey"`

	// PollInterval is the auto-check interval in seconds; 0 disables polling.
	PollInterval int  `json:"autoCheckInterval"`
	AutoRename   bool `json:"autoRename"`
}

// TableName keeps the singular table name convention.
func (Settings) TableName() string { return "settings" }

// Configured reports whether the provider endpoint and credential are set.
func (s Settings) Configured() bool {
	return s.BaseURL != "" && s.APIKey != ""
}
