// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// IsExpired reports whether the poll has an end date strictly before now.
func (p *Poll) IsExpired(now time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	return p.EndDate.Before(now)
}

// Status derives the read-only poll state. Expiry wins over the active flag.
func (p *Poll) Status(now time.Time) string {
	switch {
	case p.IsExpired(now):
		return StatusExpired
	case !p.IsActive:
		return StatusClosed
	default:
		return StatusOpen
	}
}

// Results computes per-option counts and rounded percentages of TotalVotes.
func (p *Poll) Results() []Result {
	results := make([]Result, len(p.Options))
	for i, opt := range p.Options {
		votes := len(opt.Votes)
		pct := 0
		if p.TotalVotes > 0 {
			pct = int(math.Round(float64(votes) / float64(p.TotalVotes) * 100))
		}
		results[i] = Result{Text: opt.Text, Votes: votes, Percentage: pct}
	}
	return results
}

// UserVotes returns the option indexes the user voted for, in option order.
func (p *Poll) UserVotes(userID string) []int {
	indexes := []int{}
	if userID == "" {
		return indexes
	}
	for i, opt := range p.Options {
		if hasVoter(opt.Votes, userID) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// HasUserVoted reports whether the user appears in any option's votes.
func (p *Poll) HasUserVoted(userID string) bool {
	if userID == "" {
		return false
	}
	for _, opt := range p.Options {
		if hasVoter(opt.Votes, userID) {
			return true
		}
	}
	return false
}

// RecountVotes restores TotalVotes = sum of per-option vote counts.
func (p *Poll) RecountVotes() {
	total := 0
	for _, opt := range p.Options {
		total += len(opt.Votes)
	}
	p.TotalVotes = total
}

// CheckVote runs the vote preconditions in order and returns the first failure.
// Existence is the caller's concern.
func (p *Poll) CheckVote(userID string, indexes []int, now time.Time) error {
	if !p.IsActive || p.IsExpired(now) {
		return ErrPollClosed
	}
	if p.HasUserVoted(userID) {
		return ErrAlreadyVoted
	}
	if len(indexes) == 0 {
		return ErrInvalidSelection
	}
	if !p.AllowMultipleVotes && len(indexes) != 1 {
		return ErrMultipleVotesNotAllowed
	}
	for _, idx := range indexes {
		if idx < 0 || idx >= len(p.Options) {
			return ErrInvalidOption
		}
	}
	seen := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		if seen[idx] {
			return ErrInvalidSelection
		}
		seen[idx] = true
	}
	return nil
}

// ApplyVote appends one vote per index and recounts. Call CheckVote first.
func (p *Poll) ApplyVote(userID string, indexes []int, at time.Time) {
	for _, idx := range indexes {
		p.Options[idx].Votes = append(p.Options[idx].Votes, Vote{User: userID, VotedAt: at})
	}
	p.RecountVotes()
	p.UpdatedAt = at
}

// NewPoll validates a create request and builds an unsaved poll.
func NewPoll(id, author string, req CreatePollRequest, now time.Time) (*Poll, error) {
	question, err := normalizeQuestion(req.Question)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(req.Description)
	if err != nil {
		return nil, err
	}
	options, err := buildOptions(req.Options)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	var endDate *time.Time
	if req.EndDate != nil {
		if !req.EndDate.After(now) {
			return nil, invalid("endDate", "end date must be in the future")
		}
		t := req.EndDate.UTC()
		endDate = &t
	}

	return &Poll{
		ID:                 id,
		Question:           question,
		Description:        description,
		Options:            options,
		Author:             author,
		IsActive:           true,
		AllowMultipleVotes: req.AllowMultipleVotes,
		EndDate:            endDate,
		Tags:               tags,
		TotalVotes:         0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ApplyUpdate copies the provided fields onto the poll. It reports whether the
// option list was replaced, which drops every recorded vote.
func (p *Poll) ApplyUpdate(req UpdatePollRequest, now time.Time) (optionsReplaced bool, err error) {
	next := *p

	if req.Question != nil {
		if next.Question, err = normalizeQuestion(*req.Question); err != nil {
			return false, err
		}
	}
	if req.Description != nil {
		if next.Description, err = normalizeDescription(*req.Description); err != nil {
			return false, err
		}
	}
	if req.Options != nil {
		if next.Options, err = buildOptions(req.Options); err != nil {
			return false, err
		}
		optionsReplaced = true
	}
	if req.AllowMultipleVotes != nil {
		next.AllowMultipleVotes = *req.AllowMultipleVotes
	}
	if req.EndDate.Set {
		if req.EndDate.Value == nil {
			next.EndDate = nil
		} else {
			t := req.EndDate.Value.UTC()
			next.EndDate = &t
		}
	}
	if req.Tags != nil {
		if next.Tags, err = normalizeTags(req.Tags); err != nil {
			return false, err
		}
	}

	next.RecountVotes()
	next.UpdatedAt = now
	*p = next
	return optionsReplaced, nil
}

func hasVoter(votes []Vote, userID string) bool {
	for _, v := range votes {
		if v.User == userID {
			return true
		}
	}
	return false
}

func normalizeQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", invalid("question", "question is required")
	}
	if utf8.RuneCountInString(q) > MaxQuestionLen {
		return "", invalid("question", "question must be at most 200 characters")
	}
	return q, nil
}

func normalizeDescription(d string) (string, error) {
	d = strings.TrimSpace(d)
	if utf8.RuneCountInString(d) > MaxDescriptionLen {
		return "", invalid("description", "description must be at most 500 characters")
	}
	return d, nil
}

func buildOptions(texts []string) ([]Option, error) {
	options := make([]Option, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) > MaxOptionLen {
			return nil, invalid("options", "option text must be at most 200 characters")
		}
		options = append(options, Option{Text: text, Votes: []Vote{}})
	}
	if len(options) < MinOptions {
		return nil, invalid("options", "at least 2 options are required")
	}
	if len(options) > MaxOptions {
		return nil, invalid("options", "at most 10 options are allowed")
	}
	return options, nil
}

func normalizeTags(raw []string) ([]string, error) {
	tags := []string{}
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) > MaxTags {
		return nil, invalid("tags", "at most 10 tags are allowed")
	}
	return tags, nil
}
