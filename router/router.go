// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/askboard/handlers"
	"github.com/danielhkuo/askboard/middleware"
	"github.com/danielhkuo/askboard/polls"
)

// NewRouter registers every route and wraps the mux with identity and CORS
func NewRouter(svc *polls.Service, verifier middleware.TokenVerifier) http.Handler {
	mux := http.NewServeMux()

	pollHandler := handlers.NewPollHandler(svc)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Browsing (public, identity optional)
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /polls/user/{userId}", middleware.WithLogging(pollHandler.ListUserPolls))

	// Authenticated
	mux.HandleFunc("GET /polls/user/me", middleware.WithLogging(pollHandler.ListMyPolls))
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(pollHandler.Vote))

	// Author only
	mux.HandleFunc("PUT /polls/{id}", middleware.WithLogging(pollHandler.UpdatePoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("askboard API v1"))
	})

	return middleware.CORS(middleware.WithIdentity(verifier, mux))
}
