package shared

import "time"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.DateOnly, value)
}

// OptionalDate parses value when present; nil means the bound is open.
func OptionalDate(v *Validator, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, ok := v.Date(field, value)
	if !ok {
		return nil
	}
	return &t
}
