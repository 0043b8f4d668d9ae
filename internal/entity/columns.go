package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ClipList stores a clip slice as a JSON column.
type ClipList []Clip

// Value implements driver.Valuer.
func (l ClipList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]Clip(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *ClipList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*l = ClipList{}
			return nil
		}
		return json.Unmarshal(v, (*[]Clip)(l))
	case string:
		if v == "" {
			*l = ClipList{}
			return nil
		}
		return json.Unmarshal([]byte(v), (*[]Clip)(l))
	default:
		return fmt.Errorf("unsupported type for ClipList: %T", value)
	}
}

// Clone returns a copy of the underlying slice.
func (l ClipList) Clone() ClipList {
	if l == nil {
		return nil
	}
	out := make(ClipList, len(l))
	copy(out, l)
	return out
}

// StringArray stores a string slice as a JSON column.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*a = []string{}
			return nil
		}
		return json.Unmarshal(v, (*[]string)(a))
	case string:
		if v == "" {
			*a = []string{}
			return nil
		}
		return json.Unmarshal([]byte(v), (*[]string)(a))
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}
}

// CustomHistoryList stores custom history records as a JSON column.
type CustomHistoryList []CustomHistoryItem

// Value implements driver.Valuer.
func (l CustomHistoryList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]CustomHistoryItem(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *CustomHistoryList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*l = CustomHistoryList{}
			return nil
		}
		return json.Unmarshal(v, (*[]CustomHistoryItem)(l))
	case string:
		if v == "" {
			*l = CustomHistoryList{}
			return nil
		}
		return json.Unmarshal([]byte(v), (*[]CustomHistoryItem)(l))
	default:
		return fmt.Errorf("unsupported type for CustomHistoryList: %T", value)
	}
}
