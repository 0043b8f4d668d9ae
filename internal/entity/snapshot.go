package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Snapshot is the import/export document. The key names match the original
// browser client's export files so existing backups keep working.
type Snapshot struct {
	BaseURL           string              `json:"baseUrl"`
	APIKey            string              `json:"apiKey"`
	Tasks             []Task              `json:"tasks"`
	AutoCheckInterval int                 `json:"autoCheckInterval"`
	AutoRename        bool                `json:"autoRename"`
	CreativeHistory   []string            `json:"creativeHistory"`
	CustomHistory     []CustomHistoryItem `json:"customHistory"`
}

// ErrInvalidSnapshot signals that an import document does not have the
// required shape. Nothing is applied in that case.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ParseSnapshot validates the raw document shape and decodes it. Required:
// baseUrl and apiKey present as strings (empty is fine) and tasks present as
// an array. Unknown keys are ignored.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidSnapshot, err)
	}

	for _, key := range []string{"baseUrl", "apiKey"} {
		value, ok := probe[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidSnapshot, key)
		}
		// Unmarshalling null into a string is a silent no-op, so probe
		// through a pointer to tell null apart from an actual string.
		var s *string
		if err := json.Unmarshal(value, &s); err != nil || s == nil {
			return nil, fmt.Errorf("%w: %q is not a string", ErrInvalidSnapshot, key)
		}
	}

	tasksRaw, ok := probe["tasks"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"tasks\"", ErrInvalidSnapshot)
	}
	var tasksProbe *[]json.RawMessage
	if err := json.Unmarshal(tasksRaw, &tasksProbe); err != nil || tasksProbe == nil {
		return nil, fmt.Errorf("%w: \"tasks\" is not an array", ErrInvalidSnapshot)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &snapshot, nil
}
