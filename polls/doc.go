// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls implements the poll operations on top of a Store.

The service owns authorization (only the author may update, close or
delete) and paging defaults. Validation and vote rules live on
models.Poll; the store is responsible for applying a vote atomically.

	svc := polls.NewService(store)
	p, err := svc.Create(ctx, userID, req)
	p, results, err := svc.Vote(ctx, p.ID, voterID, []int{0})

Errors are the sentinels from package models and can be matched with
errors.Is.
*/
package polls
