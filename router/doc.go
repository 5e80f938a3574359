// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the askboard API.

# Route Registration

NewRouter returns the complete handler, already wrapped with identity
extraction and CORS:

	handler := router.NewRouter(svc, auth.NewVerifier(cfg.JWTSecret))

# Endpoints

Health:

	GET /health
	GET /

Public (a bearer token is optional and personalizes the poll view):

	GET /polls                - Paginated active polls (page, limit, sort, order, search)
	GET /polls/{id}           - Poll, results and the viewer's own votes
	GET /polls/user/{userId}  - A user's active polls

Authenticated:

	GET  /polls/user/me       - Your polls, closed ones included
	POST /polls               - Create poll
	POST /polls/{id}/vote     - Vote {"optionIndexes": [...]}

Author only:

	PUT    /polls/{id}        - Update fields; replacing options resets votes
	POST   /polls/{id}/close  - Stop accepting votes
	DELETE /polls/{id}        - Delete poll
*/
package router
