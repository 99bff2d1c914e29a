package leave

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("leave request not found")
	ErrNotPending   = errors.New("leave request is not pending")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidType  = errors.New("invalid leave type")
	ErrInvalidRange = errors.New("end date before start date")
	ErrStartInPast  = errors.New("start date in the past")
	ErrOverlap      = errors.New("overlaps an existing request")
	ErrReasonShort  = errors.New("reason too short")
)

type Type string

const (
	TypeSick    Type = "sick"
	TypeMedical Type = "medical"
)

var Types = []Type{TypeSick, TypeMedical}

func ParseType(value string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(value))) {
	case TypeSick:
		return TypeSick, true
	case TypeMedical:
		return TypeMedical, true
	default:
		return "", false
	}
}

func (t Type) Label() string {
	switch t {
	case TypeSick:
		return "Sick Leave"
	case TypeMedical:
		return "Medical Leave"
	default:
		return string(t)
	}
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

func ParseStatus(value string) (Status, bool) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled} {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, true
		}
	}
	return "", false
}

type Request struct {
	ID            string     `json:"id"`
	RefNo         int64      `json:"-"`
	UserID        string     `json:"userId"`
	EmployeeName  string     `json:"employeeName"`
	Type          Type       `json:"type"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	Days          int        `json:"days"`
	Reason        string     `json:"reason"`
	Status        Status     `json:"status"`
	SubmittedDate time.Time  `json:"submittedDate"`
	DecidedBy     string     `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Reference is the human-facing identifier shown in tables, e.g. REQ-2001.
func (r Request) Reference() string {
	return fmt.Sprintf("REQ-%d", r.RefNo)
}

type Balance struct {
	Type  Type `json:"type"`
	Total int  `json:"total"`
	Used  int  `json:"used"`
}

func (b Balance) Remaining() int {
	if b.Used >= b.Total {
		return 0
	}
	return b.Total - b.Used
}

type Overview struct {
	History  []Request `json:"history"`
	Balances []Balance `json:"balances"`
	Pending  int       `json:"pending"`
	Approved int       `json:"approved"`
}

// Balance returns the balance for t, or a zero balance when none is stored.
func (o Overview) Balance(t Type) Balance {
	for _, b := range o.Balances {
		if b.Type == t {
			return b
		}
	}
	return Balance{Type: t}
}

type SubmitInput struct {
	Type          Type
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
	EmployeeName  string
	SubmittedDate time.Time
}

type Filter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Status Status
	Type   Type
	Limit  int
	Offset int
}

type ListResult struct {
	Items []Request `json:"items"`
	Total int       `json:"total"`
}
