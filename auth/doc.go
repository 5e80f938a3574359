// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth is the identity boundary of the API.

# Bearer Tokens

Users sign in elsewhere; this service only verifies HS256 JWTs signed with
the shared JWT_SECRET and trusts the user id they carry:

	v := auth.NewVerifier(secret)
	userID, err := v.UserID(token)

The user id is read from the "id" claim, falling back to "sub". Tokens
signed with any other algorithm are rejected.

For local tooling and tests:

	token, err := v.IssueToken("user-123", time.Hour)

# ID Generation

Random UUIDs for new records:

	id := auth.GenerateID()
*/
package auth
