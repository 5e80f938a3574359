// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists polls. Two stores implement the same method set:

  - SQLStore: PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite), queries
    built with goqu for either dialect
  - MongoStore: one document per poll with embedded options and votes

# Schema Creation

CreateSchema initializes all SQL tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
OpenSQLStore calls it for you.

# Tables

  - poll: question, flags, end date, denormalized total_votes
  - poll_option: option text by (poll_id, position)
  - poll_tag: tags by (poll_id, position)
  - poll_voter: one row per (poll_id, user_id)
  - poll_vote: one row per selected option

# Relationships

	poll 1──* poll_option
	poll 1──* poll_tag
	poll 1──* poll_voter
	poll 1──* poll_vote

# One Vote Per User

Both stores guarantee a user is registered at most once per poll, even when
requests race:

  - SQL: the poll row is locked by an UPDATE at the start of the vote
    transaction, preconditions are re-checked on the locked state, and the
    poll_voter primary key rejects any duplicate that slips through.
  - Mongo: a single FindOneAndUpdate whose filter requires the user to be
    absent from options.votes.user, the poll to be open, and the option
    list to be unchanged. $push and $inc apply atomically.

Either way totalVotes is rewritten in the same atomic step as the votes.
*/
package db
