// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the askboard API.

PollHandler wraps a *polls.Service:

	pollHandler := handlers.NewPollHandler(svc)

The caller's identity comes from middleware.UserID. Handlers that mutate
state answer 401 when it is missing.

# Poll View

GET /polls/{id}, create, update and close all return the same per-viewer
shape:

	{"poll": {...}, "results": [...], "userVotes": [0], "hasVoted": true,
	 "isExpired": false, "status": "open", "endsIn": "3 days from now"}

# Errors

Service errors are mapped once, in writeServiceError:

	400  validation_error, invalid_selection, multiple_votes_not_allowed, invalid_option
	401  unauthorized
	403  forbidden
	404  not_found
	409  poll_closed, already_voted
	500  internal_error
*/
package handlers
