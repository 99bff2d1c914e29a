package forms

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

var ErrInvalidTransition = errors.New("invalid submission transition")

// Submission tracks one form's lifecycle: idle → submitting → success | error.
// An errored form may be submitted again.
type Submission struct {
	State   State
	Message string
	Errors  FieldErrors
	// FailedMessage is used when a backend error carries no message of its own.
	FailedMessage string
}

func NewSubmission(failedMessage string) *Submission {
	return &Submission{State: StateIdle, FailedMessage: failedMessage}
}

// Invalid records schema errors. The form stays idle and nothing is sent.
func (s *Submission) Invalid(errs FieldErrors) {
	s.State = StateIdle
	s.Message = ""
	s.Errors = errs
}

func (s *Submission) Begin() error {
	switch s.State {
	case StateIdle, StateError, "":
		s.State = StateSubmitting
		s.Message = ""
		s.Errors = nil
		return nil
	default:
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.State)
	}
}

func (s *Submission) Succeed(message string) error {
	if s.State != StateSubmitting {
		return fmt.Errorf("%w: succeed from %s", ErrInvalidTransition, s.State)
	}
	s.State = StateSuccess
	s.Message = message
	return nil
}

// Fail moves to error with the backend message, or the form default when empty.
func (s *Submission) Fail(message string) error {
	if s.State != StateSubmitting {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.State)
	}
	s.State = StateError
	s.Message = message
	if s.Message == "" {
		s.Message = s.FailedMessage
	}
	return nil
}

func (s *Submission) Submitting() bool { return s.State == StateSubmitting }
func (s *Submission) Succeeded() bool  { return s.State == StateSuccess }
func (s *Submission) Failed() bool     { return s.State == StateError }

// Deduper collapses concurrent submissions sharing a key into one backend call.
type Deduper struct {
	group singleflight.Group
}

// Do runs fn once per in-flight key; shared is true for callers that joined.
func Do[T any](ctx context.Context, d *Deduper, key string, fn func(context.Context) (T, error)) (result T, shared bool, err error) {
	ch := d.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if v, ok := res.Val.(T); ok {
			result = v
		}
		return result, res.Shared, res.Err
	case <-ctx.Done():
		return result, false, ctx.Err()
	}
}
