package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leavedesk/internal/auth"
)

// Remote posts JSON to a separately deployed backend. It accepts both the
// enveloped responses this service's own API produces and flat bodies of the
// form {role, firstName, token, message}.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

var _ Gateway = (*Remote)(nil)

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type wireError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type wireBody struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *wireError      `json:"error"`
	Message string          `json:"message"`
}

func (r *Remote) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := r.post(ctx, "/api/login", "", map[string]string{"email": email, "password": password}, &s)
	return s, finishSession(s, err)
}

func (r *Remote) Signup(ctx context.Context, req SignupRequest) (Session, error) {
	var s Session
	err := r.post(ctx, "/api/signup", "", req, &s)
	if err == nil && s.FirstName == "" {
		s.FirstName = req.FirstName
	}
	if err == nil && s.Role == "" {
		s.Role = auth.Role(req.Role)
	}
	return s, finishSession(s, err)
}

func (r *Remote) RequestPasswordReset(ctx context.Context, email string) error {
	return r.post(ctx, "/api/password-reset", "", map[string]string{"email": email}, nil)
}

func (r *Remote) ResetPassword(ctx context.Context, token, password string) error {
	return r.post(ctx, "/api/password-reset/confirm", "", map[string]string{"token": token, "password": password}, nil)
}

func (r *Remote) SubmitSickLeave(ctx context.Context, caller Session, req SickLeaveRequest) (SickLeaveReceipt, error) {
	var out SickLeaveReceipt
	err := r.post(ctx, "/api/sick-leave", caller.Token, req, &out)
	return out, err
}

// finishSession rejects a 2xx login whose role we cannot route.
func finishSession(s Session, err error) error {
	if err != nil {
		return err
	}
	if !s.Role.Valid() {
		return &Error{Status: http.StatusBadGateway, Code: "invalid_role", Message: "The server returned an unknown role"}
	}
	return nil
}

func (r *Remote) post(ctx context.Context, path, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var wb wireBody
	decoded := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &wb) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		if decoded {
			if wb.Error != nil {
				e.Code = wb.Error.Code
				e.Message = wb.Error.Message
				e.Fields = fieldsFrom(wb.Error.Details)
			}
			if e.Message == "" {
				e.Message = wb.Message
			}
		}
		return e
	}

	if out == nil || !decoded {
		return nil
	}
	payloadJSON := raw
	if wb.Success != nil && len(wb.Data) > 0 && string(wb.Data) != "null" {
		payloadJSON = wb.Data
	}
	if err := json.Unmarshal(payloadJSON, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func fieldsFrom(details map[string]any) []FieldError {
	list, ok := details["fields"].([]any)
	if !ok {
		return nil
	}
	var out []FieldError
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		field, _ := m["field"].(string)
		reason, _ := m["reason"].(string)
		if field != "" {
			out = append(out, FieldError{Field: field, Reason: reason})
		}
	}
	return out
}

// IsUnavailable reports whether err came from the transport rather than the backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
