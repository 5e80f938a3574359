// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/askboard/auth"
	"github.com/danielhkuo/askboard/cliparse"
	"github.com/danielhkuo/askboard/db"
	"github.com/danielhkuo/askboard/models"
)

// TestJWTSecret signs every token issued by AuthHeader
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a private in-memory SQLite store with the full schema
func SetupTestDB(t *testing.T) *db.SQLStore {
	t.Helper()

	conn, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection keeps every query on the same in-memory database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db.NewSQLStore(conn, db.DialectSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: cliparse.DatabaseSQLite,
		JWTSecret:    TestJWTSecret,
		LogLevel:     slog.LevelInfo,
	}
}

// NewTestVerifier returns a verifier for tokens signed with TestJWTSecret
func NewTestVerifier() *auth.Verifier {
	return auth.NewVerifier(TestJWTSecret)
}

// AuthHeader returns an Authorization header carrying a fresh token for userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()

	token, err := NewTestVerifier().IssueToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// TestPoll describes a poll fixture. Zero values give an open single-choice
// poll with options A and B owned by "author".
type TestPoll struct {
	Author   string
	Options  []string
	Multiple bool
	Inactive bool
	EndDate  *time.Time
}

// CreateTestPoll stores a poll directly, bypassing create validation so
// fixtures can already be expired or closed
func CreateTestPoll(t *testing.T, store *db.SQLStore, fixture TestPoll) *models.Poll {
	t.Helper()

	if fixture.Author == "" {
		fixture.Author = "author"
	}
	if len(fixture.Options) == 0 {
		fixture.Options = []string{"A", "B"}
	}

	now := time.Now().UTC()
	p := &models.Poll{
		ID:                 auth.GenerateID(),
		Question:           "Test poll?",
		Description:        "A test poll",
		Author:             fixture.Author,
		IsActive:           !fixture.Inactive,
		AllowMultipleVotes: fixture.Multiple,
		EndDate:            fixture.EndDate,
		Tags:               []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, text := range fixture.Options {
		p.Options = append(p.Options, models.Option{Text: text, Votes: []models.Vote{}})
	}

	if err := store.CreatePoll(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return p
}

// CastTestVote records a vote through the store
func CastTestVote(t *testing.T, store *db.SQLStore, pollID, userID string, indexes ...int) {
	t.Helper()

	if _, err := store.RecordVote(context.Background(), pollID, userID, indexes, time.Now().UTC()); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode decodes an error response and checks its code
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q (message %q)", code, resp.Code, resp.Message)
	}
}
