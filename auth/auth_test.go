// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.IssueToken("user-42", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	userID, err := v.UserID(token)
	if err != nil {
		t.Fatalf("UserID() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("UserID() = %q, want user-42", userID)
	}
}

func TestUserIDRejects(t *testing.T) {
	v := NewVerifier("test-secret")
	other := NewVerifier("other-secret")

	wrongSecret, _ := other.IssueToken("user-1", time.Hour)
	expired, _ := v.IssueToken("user-1", -time.Minute)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "user-1"})
	wrongAlg, err := hs512.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", wrongSecret},
		{"expired", expired},
		{"alg none", unsigned},
		{"wrong algorithm", wrongAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.UserID(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("UserID() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestUserIDClaimFallback(t *testing.T) {
	v := NewVerifier("test-secret")

	subOnly := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "sub-user"})
	token, _ := subOnly.SignedString([]byte("test-secret"))
	if got, err := v.UserID(token); err != nil || got != "sub-user" {
		t.Errorf("UserID() = %q, %v; want sub-user", got, err)
	}

	empty := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{})
	token, _ = empty.SignedString([]byte("test-secret"))
	if _, err := v.UserID(token); !errors.Is(err, ErrMissingUser) {
		t.Errorf("UserID() error = %v, want ErrMissingUser", err)
	}
}

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("GenerateID() = %q is not a UUID: %v", id1, err)
	}
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}
