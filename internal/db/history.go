package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-finder/internal/types"
)

// Listing limits for history queries.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RecordSearch stores one search outcome.
func (db *DB) RecordSearch(ctx context.Context, rec types.SearchRecord) error {
	keywords := rec.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO searches (session_id, keywords, location, listing_count, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))`,
		rec.SessionID, keywords, rec.Location, rec.ListingCount, nullIfEmpty(rec.Error), nullIfZero(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// RecordDraft stores one drafting outcome.
func (db *DB) RecordDraft(ctx context.Context, rec types.DraftRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO drafts (session_id, listing_id, title, company, background, cover_letter, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8::timestamptz, NOW()))`,
		rec.SessionID, rec.ListingID, rec.Title, rec.Company, rec.Background,
		nullIfEmpty(rec.CoverLetter), nullIfEmpty(rec.Error), nullIfZero(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record draft: %w", err)
	}
	return nil
}

// nullIfZero lets the database assign the timestamp when none is given.
func nullIfZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ListSearches returns a session's searches, newest first.
func (db *DB) ListSearches(ctx context.Context, sessionID string, limit int) ([]types.SearchRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, keywords, location, listing_count, error, created_at
		 FROM searches
		 WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	records := []types.SearchRecord{}
	for rows.Next() {
		var r types.SearchRecord
		var errMsg *string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Keywords, &r.Location, &r.ListingCount, &errMsg, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		r.Error = derefString(errMsg)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListDrafts returns a session's drafts, newest first.
func (db *DB) ListDrafts(ctx context.Context, sessionID string, limit int) ([]types.DraftRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, listing_id, title, company, background, cover_letter, error, created_at
		 FROM drafts
		 WHERE session_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		sessionID, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanDraft)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.DraftRecord{}
	}
	return records, nil
}

func scanDraft(row pgx.CollectableRow) (types.DraftRecord, error) {
	var r types.DraftRecord
	var letter, errMsg *string
	if err := row.Scan(&r.ID, &r.SessionID, &r.ListingID, &r.Title, &r.Company, &r.Background, &letter, &errMsg, &r.CreatedAt); err != nil {
		return r, fmt.Errorf("failed to scan draft: %w", err)
	}
	r.CoverLetter = derefString(letter)
	r.Error = derefString(errMsg)
	return r, nil
}

// History returns a session's searches and drafts.
func (db *DB) History(ctx context.Context, sessionID string, limit int) (*types.History, error) {
	searches, err := db.ListSearches(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	drafts, err := db.ListDrafts(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	return &types.History{SessionID: sessionID, Searches: searches, Drafts: drafts}, nil
}
