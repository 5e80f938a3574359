// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
user_id, duration_ms).

# Identity

WithIdentity wraps the whole mux and turns a bearer token into a user id:

	handler := middleware.CORS(middleware.WithIdentity(verifier, mux))

Handlers read it back with UserID:

	userID, ok := middleware.UserID(r.Context())

A missing Authorization header is anonymous. A malformed or invalid one
is answered with 401 before any route runs.

# CORS Middleware

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type and Authorization. Preflight requests get 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusConflict, "already_voted", "You have already voted on this poll")
*/
package middleware
