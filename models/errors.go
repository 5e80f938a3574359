// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrNotFound                = errors.New("poll not found")
	ErrForbidden               = errors.New("not authorized")
	ErrPollClosed              = errors.New("poll is not active or has expired")
	ErrAlreadyVoted            = errors.New("already voted on this poll")
	ErrInvalidSelection        = errors.New("select at least one option")
	ErrMultipleVotesNotAllowed = errors.New("this poll only allows single votes")
	ErrInvalidOption           = errors.New("invalid option selected")
)

// ValidationError reports a bad request field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
