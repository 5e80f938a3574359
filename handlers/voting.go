// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/askboard/middleware"
	"github.com/danielhkuo/askboard/models"
)

// Vote handles POST /polls/{id}/vote
// Body: {"optionIndexes": [0, 2]}
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON")
		return
	}

	poll, results, err := h.svc.Vote(r.Context(), r.PathValue("id"), userID, req.OptionIndexes)
	if err != nil {
		writeServiceError(w, err, "vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Poll:      *poll,
		Results:   results,
		UserVotes: poll.UserVotes(userID),
		HasVoted:  true,
	})
}
