// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the askboard API server.

askboard is a community polling service: signed-in users create
single or multiple choice polls, everyone can browse them, and each user
may vote once per poll.

# Starting the Server

The server reads a .env file, environment variables or CLI flags:

	DATABASE_URL=askboard.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file, PostgreSQL DSN or MongoDB URI
  - JWT_SECRET (-jwt-secret): HS256 secret shared with the account service

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite, postgres or mongo (default: sqlite)
  - MONGO_DATABASE (-mongo-db): Mongo database name (default: askboard)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)

# Architecture

  - polls: the poll service (create, vote, update, close, delete, list)
  - models: domain types, validation, vote rules and results
  - db: SQL (goqu over PostgreSQL/SQLite) and MongoDB stores
  - handlers: HTTP request handlers and error mapping
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, bearer identity, JSON helpers
  - auth: JWT verification and id generation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
