// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseURL: connection string or SQLite file URI (required)
  - DatabaseType: sqlite, postgres or mongo (default: sqlite)
  - MongoDatabase: database name when DatabaseType is mongo (default: askboard)
  - JWTSecret: shared secret for bearer token verification (required)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type
	-mongo-db    Mongo database name
	-log-level   Log level
	-jwt-secret  JWT secret

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	MONGO_DATABASE → -mongo-db
	LOG_LEVEL      → -log-level
	JWT_SECRET     → -jwt-secret

CLI flags take precedence over environment variables. LoadEnvFile can
seed the environment from a .env file first; it never overrides variables
that are already set.

# Example

	// In main.go
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
