// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/askboard/middleware"
	"github.com/danielhkuo/askboard/models"
)

// Machine readable error codes
const (
	CodeValidation         = "validation_error"
	CodeInvalidJSON        = "invalid_json"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodePollClosed         = "poll_closed"
	CodeAlreadyVoted       = "already_voted"
	CodeInvalidSelection   = "invalid_selection"
	CodeMultipleNotAllowed = "multiple_votes_not_allowed"
	CodeInvalidOption      = "invalid_option"
	CodeInternal           = "internal_error"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Domain errors surfaced to clients. Anything unlisted is a 500.
var errorMappings = []errorMapping{
	{models.ErrNotFound, http.StatusNotFound, CodeNotFound, "Poll not found"},
	{models.ErrForbidden, http.StatusForbidden, CodeForbidden, "Only the poll author can do this"},
	{models.ErrPollClosed, http.StatusConflict, CodePollClosed, "This poll is closed"},
	{models.ErrAlreadyVoted, http.StatusConflict, CodeAlreadyVoted, "You have already voted on this poll"},
	{models.ErrInvalidSelection, http.StatusBadRequest, CodeInvalidSelection, "Select at least one option, each only once"},
	{models.ErrMultipleVotesNotAllowed, http.StatusBadRequest, CodeMultipleNotAllowed, "This poll allows only one option"},
	{models.ErrInvalidOption, http.StatusBadRequest, CodeInvalidOption, "Invalid option selected"},
}

// writeServiceError maps a service error to its HTTP status and writes it
func writeServiceError(w http.ResponseWriter, err error, op string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, verr.Error())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			slog.Debug("request rejected", "op", op, "error", err)
			middleware.ErrorResponse(w, m.status, m.code, m.message)
			return
		}
	}

	slog.Error("request failed", "op", op, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// requireUser writes 401 and returns false when the request is anonymous
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}
