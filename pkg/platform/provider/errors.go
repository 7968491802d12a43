// Package provider normalizes failures from external collaborators
// (geolocation, threat intelligence, document OCR, AML screening) into a
// small taxonomy the decision services can act on.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Category is the normalized failure taxonomy.
type Category string

const (
	CategoryTimeout        Category = "timeout"
	CategoryBadData        Category = "bad_data"
	CategoryAuthentication Category = "authentication"
	CategoryOutage         Category = "provider_outage"
	CategoryNotFound       Category = "not_found"
	CategoryRateLimited    Category = "rate_limited"
	CategoryInternal       Category = "internal"
)

// Error wraps a collaborator failure with its category.
type Error struct {
	Category   Category
	Provider   string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.Provider, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.Provider, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a normalized provider error. Timeouts, outages and rate
// limits are retryable; everything else is not.
func NewError(category Category, providerName, message string, underlying error) *Error {
	retryable := category == CategoryTimeout ||
		category == CategoryOutage ||
		category == CategoryRateLimited

	return &Error{
		Category:   category,
		Provider:   providerName,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// Classify wraps an arbitrary error from a collaborator call. Errors that are
// already normalized pass through; context expiry becomes a timeout.
func Classify(providerName string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CategoryTimeout, providerName, "call timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(CategoryInternal, providerName, "call canceled", err)
	}
	return NewError(CategoryOutage, providerName, "call failed", err)
}

func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

func CategoryOf(err error) Category {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return CategoryInternal
}
