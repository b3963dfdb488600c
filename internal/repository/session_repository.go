// Package repository contains data access logic for the session registry.
// A Session is a scheduled screening of a film in a hall; its
// remaining_seats counter is mutated only by the ticket purchase
// transaction and is kept in lockstep with the ticket count.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrSessionNotFound indicates that a session was not located in the DB.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepo manages persistence for sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `id, started_at, hall_id, film_id, remaining_seats, created_at, updated_at`

func scanSession(row *sql.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.StartedAt, &s.HallID, &s.FilmID, &s.RemainingSeats, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a new session and assigns the generated ID back to
// the struct.  RemainingSeats must already be seeded by the caller
// (hall capacity or an explicit override).  Timestamp defaults are
// read back from the inserted row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (started_at, hall_id, film_id, remaining_seats) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.StartedAt.UTC(), s.HallID, s.FilmID, s.RemainingSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	got, err := scanSession(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a session by its ID.  It returns
// ErrSessionNotFound if there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return scanSession(r.db.QueryRowContext(ctx, q, id))
}

// GetTx loads a session inside the caller's transaction without
// locking the row.  Read-only snapshots use this variant.
func (r *SessionRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return scanSession(tx.QueryRowContext(ctx, q, id))
}

// GetForUpdateTx loads a session inside the caller's transaction and
// takes a row lock on it.  The purchase transaction uses this so two
// concurrent purchases against the same session serialize at the
// storage layer even if they bypass the process-local session lock.
func (r *SessionRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? FOR UPDATE`
	return scanSession(tx.QueryRowContext(ctx, q, id))
}

// DecrementSeatsTx reduces remaining_seats by exactly one within the
// caller's transaction.  The update is conditional so the counter can
// never pass below zero; when no row matches, ErrNoCapacity is
// returned and the caller must roll back.
func (r *SessionRepo) DecrementSeatsTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE sessions SET remaining_seats = remaining_seats - 1 WHERE id = ? AND remaining_seats > 0`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoCapacity
	}
	return nil
}

// ListByFilm returns upcoming sessions of a film ordered by ID with
// offset/limit pagination.
func (r *SessionRepo) ListByFilm(ctx context.Context, filmID uint64, offset, limit int) ([]model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE film_id = ? AND started_at >= NOW() ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, filmID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.HallID, &s.FilmID, &s.RemainingSeats, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasNearbySession reports whether the hall already has a session
// scheduled within the given window around startedAt.  Session
// creation rejects overlapping bookings of the same hall.
func (r *SessionRepo) HasNearbySession(ctx context.Context, hallID uint64, startedAt time.Time, window time.Duration) (bool, error) {
	const q = `SELECT COUNT(*) FROM sessions WHERE hall_id = ? AND ABS(TIMESTAMPDIFF(SECOND, started_at, ?)) < ?`
	var n int64
	err := r.db.QueryRowContext(ctx, q, hallID, startedAt.UTC(), int64(window.Seconds())).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByID removes a session and all tickets issued for it in one
// transaction.  Returns ErrSessionNotFound when no such session
// exists.
func (r *SessionRepo) DeleteByID(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE session_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
