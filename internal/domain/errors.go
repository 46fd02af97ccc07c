package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUnauthenticated    = errors.New("Not Authorized")
	ErrNotAuthorized      = errors.New("Not Authorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrImageUnresolvable  = errors.New("Failed to resolve image URL")
	ErrUploadTicket       = errors.New("upload target expired or already used")
	ErrUnsupportedMedia   = errors.New("unsupported content type")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every rejected field of one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
