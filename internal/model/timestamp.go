package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are the accepted API timestamp forms, tried in order.
// Layouts without a zone parse as UTC; fractional seconds are optional.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses an API timestamp. Besides RFC 3339 it accepts
// ISO 8601 date-times without a zone, which are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: unrecognized layout", s)
}

// parseOptionalTimestamp returns the zero time for an empty value.
func parseOptionalTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(s)
}

// UnmarshalJSON decodes a todo, accepting zone-less timestamps and taking
// the category id from the embedded category when category_id is absent.
func (t *Todo) UnmarshalJSON(data []byte) error {
	type Alias Todo
	aux := struct {
		*Alias
		DueDate   *string `json:"due_date"`
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
	}{Alias: (*Alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if t.CreatedAt, err = parseOptionalTimestamp(aux.CreatedAt); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if t.UpdatedAt, err = parseOptionalTimestamp(aux.UpdatedAt); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	t.DueDate = nil
	if aux.DueDate != nil && *aux.DueDate != "" {
		due, err := ParseTimestamp(*aux.DueDate)
		if err != nil {
			return fmt.Errorf("due_date: %w", err)
		}
		t.DueDate = &due
	}

	if t.CategoryID == 0 && t.Category != nil {
		t.CategoryID = t.Category.ID
	}
	return nil
}

// UnmarshalJSON decodes a category, accepting zone-less timestamps.
func (c *Category) UnmarshalJSON(data []byte) error {
	type Alias Category
	aux := struct {
		*Alias
		CreatedAt string `json:"created_at"`
	}{Alias: (*Alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	created, err := parseOptionalTimestamp(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	c.CreatedAt = created
	return nil
}
