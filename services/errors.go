package services

import (
	"errors"
	"fmt"
)

// ValidationError marks a request the caller can fix. Controllers map it to
// a 400 response with the message as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrRuleNotFound        = errors.New("availability rule not found")
	ErrClientNotFound      = errors.New("client not found")
)
