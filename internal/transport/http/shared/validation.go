package shared

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

// Enum matches value against allowed case-insensitively and returns the
// canonical spelling. An empty value is accepted with ok false; a value that
// matches nothing is reported to v.
func (v *Validator) Enum(field, value string, allowed []string, reason string) (string, bool) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return "", false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(normalized, candidate) {
			return candidate, true
		}
	}
	v.Add(field, reason)
	return "", false
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(startField, "must be on or before "+endField)
		v.Add(endField, "must be on or after "+startField)
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

// FailForm reports schema errors from a forms.Validator.
func FailForm(w http.ResponseWriter, requestID string, errs forms.FieldErrors) {
	issues := make([]ValidationIssue, 0, len(errs))
	for _, fe := range errs.List() {
		issues = append(issues, ValidationIssue{Field: fe.Field, Reason: fe.Reason})
	}
	FailValidation(w, requestID, issues)
}

// FailGateway writes a described backend error, with field details when present.
func FailGateway(w http.ResponseWriter, requestID string, e *gateway.Error) {
	if len(e.Fields) > 0 {
		issues := make([]ValidationIssue, 0, len(e.Fields))
		for _, f := range e.Fields {
			issues = append(issues, ValidationIssue{Field: f.Field, Reason: f.Reason})
		}
		api.FailWithDetails(w, e.Status, e.Code, e.Message, map[string]any{"fields": issues}, requestID)
		return
	}
	api.Fail(w, e.Status, e.Code, e.Message, requestID)
}
