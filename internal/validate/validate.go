// Package validate normalizes and checks contact-form input before it
// enters the pipeline. It has no side effects.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Deliberately permissive: anything@anything.anything. Stricter RFC
	// validation rejects real addresses more often than it catches typos.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
)

// FieldError reports the first failing field of a submission.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Draft is a normalized submission: fields trimmed, email lowercased.
type Draft struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Submission validates raw form values and returns a normalized draft.
// Checks run in a fixed precedence order: name present, email present,
// message present, email well-formed, phone well-formed (only when a
// phone was supplied).
func Submission(name, email, phone, message string) (Draft, error) {
	d := Draft{
		Name:    strings.TrimSpace(name),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Phone:   strings.TrimSpace(phone),
		Message: strings.TrimSpace(message),
	}

	if d.Name == "" {
		return Draft{}, &FieldError{Field: "name", Reason: "name is required"}
	}
	if d.Email == "" {
		return Draft{}, &FieldError{Field: "email", Reason: "email is required"}
	}
	if d.Message == "" {
		return Draft{}, &FieldError{Field: "message", Reason: "message is required"}
	}
	if !emailPattern.MatchString(d.Email) {
		return Draft{}, &FieldError{Field: "email", Reason: "please provide a valid email address"}
	}
	if d.Phone != "" && !phonePattern.MatchString(d.Phone) {
		return Draft{}, &FieldError{Field: "phone", Reason: "phone must match (XXX) XXX-XXXX"}
	}

	return d, nil
}
