// Package forms holds the schemas behind the login, signup, password and
// sick-leave forms together with their messages and submission lifecycle.
package forms

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignupInput struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=25"`
	MiddleName      string `json:"middleName" validate:"required,min=2,max=25"`
	LastName        string `json:"lastName" validate:"required,min=2,max=25"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,hasupper,haslower,hasdigit,hasspecial"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=employee admin"`
	Department      string `json:"department" validate:"required,min=2,max=50"`
}

// FullName joins the three name parts the way the backend stores them.
func (in SignupInput) FullName() string {
	return strings.Join(strings.Fields(in.FirstName+" "+in.MiddleName+" "+in.LastName), " ")
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,hasupper,haslower,hasdigit,hasspecial"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type SickLeaveInput struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02,notpast"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02,onorafter=StartDate"`
	Reason    string `json:"reason" validate:"required,min=10,max=500"`
	Type      string `json:"type" validate:"required,oneof=sick medical"`
}

func (in SickLeaveInput) Dates() (start, end time.Time, err error) {
	if start, err = time.Parse(time.DateOnly, in.StartDate); err != nil {
		return
	}
	end, err = time.Parse(time.DateOnly, in.EndDate)
	return
}

// FieldErrors maps a field's JSON name to its first failing message.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// List returns the errors ordered by field name.
func (e FieldErrors) List() []FieldError {
	out := make([]FieldError, 0, len(e))
	for field, msg := range e {
		out = append(out, FieldError{Field: field, Reason: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

type Validator struct {
	validate *validator.Validate
	Now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), Now: time.Now}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v.validate, "hasupper", matches(upperRe))
	mustRegister(v.validate, "haslower", matches(lowerRe))
	mustRegister(v.validate, "hasdigit", matches(digitRe))
	mustRegister(v.validate, "hasspecial", matches(specialRe))
	mustRegister(v.validate, "notpast", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(time.DateOnly, fl.Field().String())
		if err != nil {
			return false
		}
		now := v.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !d.Before(today)
	})
	mustRegister(v.validate, "onorafter", func(fl validator.FieldLevel) bool {
		other := fl.Parent().FieldByName(fl.Param())
		if !other.IsValid() || other.Kind() != reflect.String {
			return false
		}
		start, err := time.Parse(time.DateOnly, other.String())
		if err != nil {
			// the start field reports its own error
			return true
		}
		end, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil && !end.Before(start)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Check validates a form input struct. It returns nil when every field passes.
func (v *Validator) Check(input any) FieldErrors {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = Message(fe.Field(), fe.Tag())
	}
	return out
}
