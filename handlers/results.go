// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/askboard/models"
)

// pollDetail builds the per-viewer view of a poll. userID may be empty for
// anonymous viewers, who get no votes of their own.
func pollDetail(p *models.Poll, userID string, now time.Time) models.PollDetailResponse {
	resp := models.PollDetailResponse{
		Poll:      *p,
		Results:   p.Results(),
		UserVotes: []int{},
		IsExpired: p.IsExpired(now),
		Status:    p.Status(now),
	}
	if userID != "" {
		resp.UserVotes = p.UserVotes(userID)
		resp.HasVoted = p.HasUserVoted(userID)
	}
	if p.EndDate != nil {
		resp.EndsIn = humanize.RelTime(*p.EndDate, now, "ago", "from now")
	}
	return resp
}
