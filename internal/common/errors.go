// Package common defines the status taxonomy and sentinel errors shared by
// every locksys component. Callers should use errors.Is to match these
// values, or StatusOf to recover the numeric status code.
package common

import "errors"

var (
	// Input validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// Collaborator and internal flow errors.
	ErrInternal      = errors.New("internal error")
	ErrStorage       = errors.New("storage error")
	ErrUninitialized = errors.New("uninitialized")
	ErrTimeout       = errors.New("timeout")

	// Authentication outcomes.
	ErrAuthFailed        = errors.New("authentication failed")
	ErrPermanentlyLocked = errors.New("account permanently locked")
	ErrThrottled         = errors.New("throttled")
	ErrNotFound          = errors.New("not found")

	// Integrity and evidence errors.
	ErrTamper  = errors.New("tamper detected")
	ErrLogFull = errors.New("log full")
)
