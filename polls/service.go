// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/askboard/auth"
	"github.com/danielhkuo/askboard/models"
)

// List defaults and bounds
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Store is the persistence the service needs. RecordVote must check the vote
// preconditions and append the votes atomically.
type Store interface {
	CreatePoll(ctx context.Context, p *models.Poll) error
	GetPoll(ctx context.Context, id string) (*models.Poll, error)
	ListPolls(ctx context.Context, q models.ListQuery) ([]models.Poll, int, error)
	ListPollsByAuthor(ctx context.Context, authorID string, includeInactive bool) ([]models.Poll, error)
	UpdatePoll(ctx context.Context, p *models.Poll, optionsReplaced bool) error
	ClosePoll(ctx context.Context, id string, at time.Time) error
	DeletePoll(ctx context.Context, id string) error
	RecordVote(ctx context.Context, pollID, userID string, indexes []int, at time.Time) (*models.Poll, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Now is the clock used for expiry and timestamps
func (s *Service) Now() time.Time {
	return s.now()
}

// Create validates the request and stores a new poll owned by author
func (s *Service) Create(ctx context.Context, author string, req models.CreatePollRequest) (*models.Poll, error) {
	p, err := models.NewPoll(auth.GenerateID(), author, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePoll(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("poll created", "poll_id", p.ID, "author", author, "options", len(p.Options))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Poll, error) {
	return s.store.GetPoll(ctx, id)
}

// Vote records the user's selection once and returns the updated poll and results
func (s *Service) Vote(ctx context.Context, pollID, userID string, indexes []int) (*models.Poll, []models.Result, error) {
	p, err := s.store.RecordVote(ctx, pollID, userID, indexes, s.now())
	if err != nil {
		slog.Debug("vote rejected", "poll_id", pollID, "user_id", userID, "error", err)
		return nil, nil, err
	}

	slog.Info("vote recorded", "poll_id", pollID, "user_id", userID, "options", indexes)
	return p, p.Results(), nil
}

// Update applies the patch for the poll's author
func (s *Service) Update(ctx context.Context, pollID, requesterID string, req models.UpdatePollRequest) (*models.Poll, error) {
	p, err := s.owned(ctx, pollID, requesterID)
	if err != nil {
		return nil, err
	}

	optionsReplaced, err := p.ApplyUpdate(req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdatePoll(ctx, p, optionsReplaced); err != nil {
		return nil, err
	}

	if optionsReplaced {
		slog.Warn("poll options replaced, votes reset", "poll_id", pollID)
	}
	slog.Info("poll updated", "poll_id", pollID)

	// Re-read so a close or votes that landed meanwhile are reflected
	return s.store.GetPoll(ctx, pollID)
}

// Close turns voting off for the poll's author. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, pollID, requesterID string) (*models.Poll, error) {
	p, err := s.owned(ctx, pollID, requesterID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return p, nil
	}

	at := s.now()
	if err := s.store.ClosePoll(ctx, pollID, at); err != nil {
		return nil, err
	}
	p.IsActive = false
	p.UpdatedAt = at

	slog.Info("poll closed", "poll_id", pollID)
	return p, nil
}

// Delete permanently removes the poll for its author
func (s *Service) Delete(ctx context.Context, pollID, requesterID string) error {
	if _, err := s.owned(ctx, pollID, requesterID); err != nil {
		return err
	}
	if err := s.store.DeletePoll(ctx, pollID); err != nil {
		return err
	}

	slog.Info("poll deleted", "poll_id", pollID)
	return nil
}

// List returns one page of active polls. Out-of-range paging values are clamped.
func (s *Service) List(ctx context.Context, q models.ListQuery) (models.ListPollsResponse, error) {
	q = NormalizeListQuery(q)

	polls, total, err := s.store.ListPolls(ctx, q)
	if err != nil {
		return models.ListPollsResponse{}, err
	}

	return models.ListPollsResponse{
		Polls:       polls,
		Total:       total,
		TotalPages:  (total + q.Limit - 1) / q.Limit,
		CurrentPage: q.Page,
	}, nil
}

// ListByAuthor returns the author's polls, newest first
func (s *Service) ListByAuthor(ctx context.Context, authorID string, includeInactive bool) ([]models.Poll, error) {
	return s.store.ListPollsByAuthor(ctx, authorID, includeInactive)
}

func (s *Service) owned(ctx context.Context, pollID, requesterID string) (*models.Poll, error) {
	p, err := s.store.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if requesterID == "" || p.Author != requesterID {
		return nil, models.ErrForbidden
	}
	return p, nil
}

// NormalizeListQuery applies defaults and bounds to paging and sorting
func NormalizeListQuery(q models.ListQuery) models.ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	switch q.Sort {
	case "createdAt", "updatedAt", "totalVotes", "question", "endDate":
	default:
		q.Sort = "createdAt"
	}
	return q
}
