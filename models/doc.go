// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API,
plus the pure poll rules shared by every store.

# Domain Types

  - Poll: question, ordered options, author, flags, end date, tags, totalVotes
  - Option: text with its embedded votes, referenced by position
  - Vote: voting user and timestamp
  - Result: per-option vote count and rounded percentage

# Poll Rules

Pure functions, no I/O:

	poll.Results()                 // counts and percentages, in option order
	poll.UserVotes(userID)         // option indexes the user picked
	poll.HasUserVoted(userID)      // any vote recorded for the user
	poll.IsExpired(now)            // endDate set and before now
	poll.Status(now)               // open, closed, or expired
	poll.CheckVote(userID, idx, now)

CheckVote applies the vote preconditions in a fixed order: closed,
already voted, empty selection, multiple selection on a single-vote poll,
out-of-range index, duplicate index. Stores call it on the state they are
about to mutate.

# Request Types

  - CreatePollRequest: question, description, options, allowMultipleVotes, endDate, tags
  - UpdatePollRequest: same fields, every one optional (endDate null clears it)
  - VoteRequest: optionIndexes

# Errors

Sentinel errors form the taxonomy surfaced to callers:

	ErrNotFound, ErrForbidden, ErrPollClosed, ErrAlreadyVoted,
	ErrInvalidSelection, ErrMultipleVotesNotAllowed, ErrInvalidOption

Input problems are *ValidationError values, which match ErrValidation.
*/
package models
