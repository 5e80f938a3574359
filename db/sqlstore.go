// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/askboard/models"
)

// goqu dialect names
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// sortColumns maps API sort keys to poll columns
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"totalVotes": "total_votes",
	"question":   "question",
	"endDate":    "end_date",
}

// SQLStore keeps polls in PostgreSQL or SQLite
type SQLStore struct {
	conn    *sql.DB
	db      *goqu.Database
	dialect string
}

// queryer is satisfied by both *goqu.Database and *goqu.TxDatabase
type queryer interface {
	From(from ...interface{}) *goqu.SelectDataset
}

type pollRow struct {
	ID                 string     `db:"id"`
	Question           string     `db:"question"`
	Description        string     `db:"description"`
	AuthorID           string     `db:"author_id"`
	IsActive           bool       `db:"is_active"`
	AllowMultipleVotes bool       `db:"allow_multiple_votes"`
	EndDate            *time.Time `db:"end_date"`
	TotalVotes         int        `db:"total_votes"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type optionRow struct {
	PollID   string `db:"poll_id"`
	Position int    `db:"position"`
	Text     string `db:"text"`
}

type tagRow struct {
	PollID   string `db:"poll_id"`
	Position int    `db:"position"`
	Tag      string `db:"tag"`
}

type voteRow struct {
	PollID   string    `db:"poll_id"`
	Position int       `db:"position"`
	UserID   string    `db:"user_id"`
	VotedAt  time.Time `db:"voted_at"`
}

// OpenSQLStore connects to PostgreSQL or SQLite and creates the schema.
// databaseType is "postgres" or "sqlite".
func OpenSQLStore(databaseType, url string) (*SQLStore, error) {
	driver, dialect := "postgres", DialectPostgres
	if databaseType == "sqlite" {
		driver, dialect = "sqlite", DialectSQLite
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// SQLite allows one writer; serialize in the pool instead of hitting SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSQLStore(conn, dialect), nil
}

func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	return &SQLStore{conn: conn, db: goqu.New(dialect, conn), dialect: dialect}
}

func (s *SQLStore) Close() error {
	return s.conn.Close()
}

// CreatePoll inserts the poll with its options and tags
func (s *SQLStore) CreatePoll(ctx context.Context, p *models.Poll) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx.Wrap(func() error {
		_, err := tx.Insert("poll").Prepared(true).Rows(goqu.Record{
			"id":                   p.ID,
			"question":             p.Question,
			"description":          p.Description,
			"author_id":            p.Author,
			"is_active":            p.IsActive,
			"allow_multiple_votes": p.AllowMultipleVotes,
			"end_date":             nullableTime(p.EndDate),
			"total_votes":          0,
			"created_at":           p.CreatedAt,
			"updated_at":           p.UpdatedAt,
		}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert poll: %w", err)
		}
		if err := insertOptions(ctx, tx, p.ID, p.Options); err != nil {
			return err
		}
		return insertTags(ctx, tx, p.ID, p.Tags)
	})
}

// GetPoll loads one poll with options, votes and tags
func (s *SQLStore) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	return loadPoll(ctx, s.db, id)
}

// ListPolls returns one page of active polls and the total match count
func (s *SQLStore) ListPolls(ctx context.Context, q models.ListQuery) ([]models.Poll, int, error) {
	ds := s.db.From("poll").Prepared(true).Where(goqu.Ex{"is_active": true})
	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(q.Search) + "%"
		tagged := s.db.From("poll_tag").Select("poll_id").Where(s.contains("tag", pattern))
		ds = ds.Where(goqu.Or(
			s.contains("question", pattern),
			s.contains("description", pattern),
			goqu.C("id").In(tagged),
		))
	}

	total, err := ds.CountContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count polls: %w", err)
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = sortColumns["createdAt"]
	}
	var order exp.OrderedExpression = goqu.I(column).Asc()
	if q.Desc {
		order = goqu.I(column).Desc()
	}

	var rows []pollRow
	err = ds.Order(order, goqu.I("id").Asc()).
		Limit(uint(q.Limit)).
		Offset(uint((q.Page - 1) * q.Limit)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query polls: %w", err)
	}

	polls, err := loadChildren(ctx, s.db, rows)
	if err != nil {
		return nil, 0, err
	}
	return polls, int(total), nil
}

// ListPollsByAuthor returns an author's polls, newest first
func (s *SQLStore) ListPollsByAuthor(ctx context.Context, authorID string, includeInactive bool) ([]models.Poll, error) {
	ds := s.db.From("poll").Prepared(true).Where(goqu.Ex{"author_id": authorID})
	if !includeInactive {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}

	var rows []pollRow
	err := ds.Order(goqu.I("created_at").Desc(), goqu.I("id").Asc()).ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls by author: %w", err)
	}
	return loadChildren(ctx, s.db, rows)
}

// UpdatePoll writes the fields an edit can change. is_active is left alone so a
// racing ClosePoll is never undone. When optionsReplaced is set the option rows
// are rewritten and every recorded vote is dropped.
func (s *SQLStore) UpdatePoll(ctx context.Context, p *models.Poll, optionsReplaced bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx.Wrap(func() error {
		set := goqu.Record{
			"question":             p.Question,
			"description":          p.Description,
			"allow_multiple_votes": p.AllowMultipleVotes,
			"end_date":             nullableTime(p.EndDate),
			"updated_at":           p.UpdatedAt,
		}
		if optionsReplaced {
			set["total_votes"] = 0
		}

		res, err := tx.Update("poll").Prepared(true).Set(set).
			Where(goqu.Ex{"id": p.ID}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update poll: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return models.ErrNotFound
		}

		if err := deleteChildren(ctx, tx, p.ID, "poll_tag"); err != nil {
			return err
		}
		if err := insertTags(ctx, tx, p.ID, p.Tags); err != nil {
			return err
		}

		if optionsReplaced {
			if err := deleteChildren(ctx, tx, p.ID, "poll_vote", "poll_voter", "poll_option"); err != nil {
				return err
			}
			if err := insertOptions(ctx, tx, p.ID, p.Options); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClosePoll clears is_active and touches nothing else
func (s *SQLStore) ClosePoll(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.Update("poll").Prepared(true).
		Set(goqu.Record{"is_active": false, "updated_at": at}).
		Where(goqu.Ex{"id": id}).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeletePoll removes the poll and all embedded data
func (s *SQLStore) DeletePoll(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx.Wrap(func() error {
		if err := deleteChildren(ctx, tx, id, "poll_vote", "poll_voter", "poll_tag", "poll_option"); err != nil {
			return err
		}
		res, err := tx.Delete("poll").Prepared(true).Where(goqu.Ex{"id": id}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete poll: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// RecordVote registers a user's selection exactly once. The poll row is
// locked first so the checks and the recount see every committed vote.
func (s *SQLStore) RecordVote(ctx context.Context, pollID, userID string, indexes []int, at time.Time) (*models.Poll, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var poll *models.Poll
	err = tx.Wrap(func() error {
		res, err := tx.Update("poll").Prepared(true).Set(goqu.Record{"updated_at": at}).
			Where(goqu.Ex{"id": pollID}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to lock poll: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return models.ErrNotFound
		}

		poll, err = loadPoll(ctx, tx, pollID)
		if err != nil {
			return err
		}
		if err := poll.CheckVote(userID, indexes, at); err != nil {
			return err
		}

		_, err = tx.Insert("poll_voter").Prepared(true).Rows(goqu.Record{
			"poll_id":  pollID,
			"user_id":  userID,
			"voted_at": at,
		}).Executor().ExecContext(ctx)
		if isUniqueViolation(err) {
			return models.ErrAlreadyVoted
		}
		if err != nil {
			return fmt.Errorf("failed to insert voter: %w", err)
		}

		votes := make([]interface{}, 0, len(indexes))
		for _, idx := range indexes {
			votes = append(votes, goqu.Record{
				"poll_id":  pollID,
				"position": idx,
				"user_id":  userID,
				"voted_at": at,
			})
		}
		if _, err := tx.Insert("poll_vote").Prepared(true).Rows(votes...).Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert votes: %w", err)
		}

		total, err := tx.From("poll_vote").Prepared(true).Where(goqu.Ex{"poll_id": pollID}).CountContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to count votes: %w", err)
		}
		_, err = tx.Update("poll").Prepared(true).Set(goqu.Record{"total_votes": total}).
			Where(goqu.Ex{"id": pollID}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update vote total: %w", err)
		}

		poll.ApplyVote(userID, indexes, at)
		poll.TotalVotes = int(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func loadPoll(ctx context.Context, q queryer, id string) (*models.Poll, error) {
	var row pollRow
	found, err := q.From("poll").Prepared(true).Where(goqu.Ex{"id": id}).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	if !found {
		return nil, models.ErrNotFound
	}

	polls, err := loadChildren(ctx, q, []pollRow{row})
	if err != nil {
		return nil, err
	}
	return &polls[0], nil
}

// loadChildren assembles polls from rows, fetching options, tags and votes in
// one query each.
func loadChildren(ctx context.Context, q queryer, rows []pollRow) ([]models.Poll, error) {
	polls := make([]models.Poll, 0, len(rows))
	if len(rows) == 0 {
		return polls, nil
	}

	ids := make([]string, len(rows))
	byID := make(map[string]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		byID[row.ID] = i
		polls = append(polls, models.Poll{
			ID:                 row.ID,
			Question:           row.Question,
			Description:        row.Description,
			Options:            []models.Option{},
			Author:             row.AuthorID,
			IsActive:           row.IsActive,
			AllowMultipleVotes: row.AllowMultipleVotes,
			EndDate:            utcPtr(row.EndDate),
			Tags:               []string{},
			TotalVotes:         row.TotalVotes,
			CreatedAt:          row.CreatedAt.UTC(),
			UpdatedAt:          row.UpdatedAt.UTC(),
		})
	}

	var options []optionRow
	err := q.From("poll_option").Prepared(true).Where(goqu.Ex{"poll_id": ids}).
		Order(goqu.C("poll_id").Asc(), goqu.C("position").Asc()).
		ScanStructsContext(ctx, &options)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	for _, opt := range options {
		p := &polls[byID[opt.PollID]]
		p.Options = append(p.Options, models.Option{Text: opt.Text, Votes: []models.Vote{}})
	}

	var tags []tagRow
	err = q.From("poll_tag").Prepared(true).Where(goqu.Ex{"poll_id": ids}).
		Order(goqu.C("poll_id").Asc(), goqu.C("position").Asc()).
		ScanStructsContext(ctx, &tags)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	for _, tag := range tags {
		p := &polls[byID[tag.PollID]]
		p.Tags = append(p.Tags, tag.Tag)
	}

	var votes []voteRow
	err = q.From("poll_vote").Prepared(true).Where(goqu.Ex{"poll_id": ids}).
		Order(goqu.C("voted_at").Asc(), goqu.C("user_id").Asc()).
		ScanStructsContext(ctx, &votes)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	for _, v := range votes {
		p := &polls[byID[v.PollID]]
		if v.Position < 0 || v.Position >= len(p.Options) {
			continue
		}
		p.Options[v.Position].Votes = append(p.Options[v.Position].Votes, models.Vote{
			User:    v.UserID,
			VotedAt: v.VotedAt.UTC(),
		})
	}

	return polls, nil
}

func insertOptions(ctx context.Context, tx *goqu.TxDatabase, pollID string, options []models.Option) error {
	if len(options) == 0 {
		return nil
	}
	rows := make([]interface{}, len(options))
	for i, opt := range options {
		rows[i] = goqu.Record{"poll_id": pollID, "position": i, "text": opt.Text}
	}
	if _, err := tx.Insert("poll_option").Prepared(true).Rows(rows...).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert options: %w", err)
	}
	return nil
}

func insertTags(ctx context.Context, tx *goqu.TxDatabase, pollID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]interface{}, len(tags))
	for i, tag := range tags {
		rows[i] = goqu.Record{"poll_id": pollID, "position": i, "tag": tag}
	}
	if _, err := tx.Insert("poll_tag").Prepared(true).Rows(rows...).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert tags: %w", err)
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *goqu.TxDatabase, pollID string, tables ...string) error {
	for _, table := range tables {
		_, err := tx.Delete(table).Prepared(true).Where(goqu.Ex{"poll_id": pollID}).Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return nil
}

// likeEscaper makes % and _ in a search term match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains is a case-insensitive LIKE on column with backslash escapes.
// SQLite LIKE already ignores ASCII case and has no ILIKE.
func (s *SQLStore) contains(column, pattern string) exp.LiteralExpression {
	if s.dialect == DialectSQLite {
		return goqu.L(`? LIKE ? ESCAPE '\'`, goqu.C(column), pattern)
	}
	return goqu.L(`? ILIKE ? ESCAPE '\'`, goqu.C(column), pattern)
}

// isUniqueViolation recognizes primary key and unique failures from either driver
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
