// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/askboard/middleware"
	"github.com/danielhkuo/askboard/models"
	"github.com/danielhkuo/askboard/polls"
)

type PollHandler struct {
	svc *polls.Service
}

func NewPollHandler(svc *polls.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.List(r.Context(), parseListQuery(r))
	if err != nil {
		writeServiceError(w, err, "list polls")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get poll")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	middleware.JSONResponse(w, http.StatusOK, pollDetail(poll, userID, h.svc.Now()))
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON")
		return
	}

	poll, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "create poll")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, pollDetail(poll, userID, h.svc.Now()))
}

// UpdatePoll handles PUT /polls/{id}
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON")
		return
	}

	poll, err := h.svc.Update(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		writeServiceError(w, err, "update poll")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, pollDetail(poll, userID, h.svc.Now()))
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	poll, err := h.svc.Close(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err, "close poll")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, pollDetail(poll, userID, h.svc.Now()))
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, err, "delete poll")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Poll deleted"})
}

// ListMyPolls handles GET /polls/user/me, including closed polls
func (h *PollHandler) ListMyPolls(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	mine, err := h.svc.ListByAuthor(r.Context(), userID, true)
	if err != nil {
		writeServiceError(w, err, "list my polls")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, mine)
}

// ListUserPolls handles GET /polls/user/{userId}, active polls only
func (h *PollHandler) ListUserPolls(w http.ResponseWriter, r *http.Request) {
	theirs, err := h.svc.ListByAuthor(r.Context(), r.PathValue("userId"), false)
	if err != nil {
		writeServiceError(w, err, "list user polls")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, theirs)
}

// parseListQuery reads page, limit, sort, order and search. Unparseable
// numbers fall back to the defaults.
func parseListQuery(r *http.Request) models.ListQuery {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return models.ListQuery{
		Page:   page,
		Limit:  limit,
		Sort:   q.Get("sort"),
		Desc:   !strings.EqualFold(q.Get("order"), "asc"),
		Search: strings.TrimSpace(q.Get("search")),
	}
}
