package apiclient

import (
	"strings"
	"time"
	"unicode"
)

const (
	minPasswordLength = 6
	minPhoneDigits    = 10
)

type validator struct {
	fields []FieldError
}

func (v *validator) check(ok bool, field, msg string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: msg})
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}

	return &ValidationError{Fields: v.fields}
}

func (r Registration) validate() error {
	var v validator
	v.check(strings.TrimSpace(r.Username) != "", "username", "This field is required.")
	v.check(strings.TrimSpace(r.Email) != "", "email", "This field is required.")
	v.check(r.Password != "", "password", "This field is required.")
	if r.Password != "" {
		v.check(len(r.Password) >= minPasswordLength, "password", "Password must be at least 6 characters.")
	}

	return v.err()
}

func (c Credentials) validate() error {
	var v validator
	v.check(strings.TrimSpace(c.Username) != "", "username", "This field is required.")
	v.check(c.Password != "", "password", "This field is required.")

	return v.err()
}

// validate checks a task payload. A create requires a title and rejects due
// dates before today.
func (in TaskInput) validate(create bool, now time.Time) error {
	var v validator
	if create || in.Title != nil {
		v.check(in.Title != nil && strings.TrimSpace(*in.Title) != "", "title", "This field is required.")
	}
	if in.Status != nil {
		v.check(in.Status.Valid(), "status", "Must be one of pending, in-progress, completed.")
	}
	if in.Priority != nil {
		v.check(in.Priority.Valid(), "priority", "Must be one of low, medium, high.")
	}
	if in.DueDate != nil && *in.DueDate != "" {
		validateDueDate(&v, *in.DueDate, create, now)
	}

	return v.err()
}

func (in TeamTaskInput) validate(now time.Time) error {
	var v validator
	v.check(strings.TrimSpace(in.Title) != "", "title", "This field is required.")
	if in.Status != "" {
		v.check(in.Status.Valid(), "status", "Must be one of pending, in-progress, completed.")
	}
	if in.Priority != "" {
		v.check(in.Priority.Valid(), "priority", "Must be one of low, medium, high.")
	}
	if in.DueDate != "" {
		validateDueDate(&v, in.DueDate, true, now)
	}

	return v.err()
}

func validateDueDate(v *validator, date string, rejectPast bool, now time.Time) {
	due, err := time.Parse(DateLayout, date)
	if err != nil {
		v.check(false, "due_date", "Date has wrong format. Use YYYY-MM-DD.")
		return
	}
	if !rejectPast {
		return
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	v.check(!due.Before(today), "due_date", "Due date cannot be in the past.")
}

func (t TeamInput) validate() error {
	var v validator
	v.check(strings.TrimSpace(t.Name) != "", "name", "This field is required.")

	return v.err()
}

func (p ProfileUpdate) validate() error {
	var v validator
	if p.Phone != nil && *p.Phone != "" {
		v.check(countDigits(*p.Phone) >= minPhoneDigits, "phone", "Phone number must be at least 10 digits.")
	}

	return v.err()
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}

	return n
}
