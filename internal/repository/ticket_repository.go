package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrTicketNotFound indicates that a ticket was not located in the DB.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo is the ticket ledger: the source of truth for occupied
// seats.  Tickets are inserted only by the purchase transaction and
// removed only by admin deletion or session-delete cascades.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// InsertTx writes a new ticket within the caller's transaction and
// assigns the generated ID.  The (session_id, seat) unique key turns
// a lost race into ErrDuplicateSeat instead of a double sale.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (seat, user_id, session_id) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.Seat, t.UserID, t.SessionID)
	if err != nil {
		// MySQL error 1062: duplicate entry for the uq_tickets_session_seat key.
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicateSeat
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// OccupiedSeatsTx returns the seat numbers of every ticket issued for
// the session, ascending, read inside the caller's transaction so the
// purchase decision sees a consistent snapshot.
func (r *TicketRepo) OccupiedSeatsTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]uint32, error) {
	const q = `SELECT seat FROM tickets WHERE session_id = ? ORDER BY seat`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]uint32, 0)
	for rows.Next() {
		var s uint32
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// ListBySession returns all tickets for a session ordered by ID.
func (r *TicketRepo) ListBySession(ctx context.Context, sessionID uint64) ([]model.Ticket, error) {
	const q = `SELECT id, seat, user_id, session_id FROM tickets WHERE session_id = ? ORDER BY id`
	return r.list(ctx, q, sessionID)
}

// ListByUser returns the user's tickets ordered by ID with
// offset/limit pagination.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Ticket, error) {
	const q = `SELECT id, seat, user_id, session_id FROM tickets WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return r.list(ctx, q, userID, limit, offset)
}

// ListAll returns every ticket in the ledger ordered by ID.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT id, seat, user_id, session_id FROM tickets ORDER BY id`
	return r.list(ctx, q)
}

func (r *TicketRepo) list(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.ID, &t.Seat, &t.UserID, &t.SessionID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountBySession returns the number of tickets sold for a session.
func (r *TicketRepo) CountBySession(ctx context.Context, sessionID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// CountByFilm returns the number of tickets sold across every session
// of the film.  Used for the sold-ticket statistics endpoint.
func (r *TicketRepo) CountByFilm(ctx context.Context, filmID uint64) (int64, error) {
	const q = `SELECT COUNT(*) FROM tickets t JOIN sessions s ON s.id = t.session_id WHERE s.film_id = ?`
	var n int64
	err := r.db.QueryRowContext(ctx, q, filmID).Scan(&n)
	return n, err
}

// VoidByID cancels a ticket: the row is deleted and the seat returned
// to the session's pool in one transaction.  Returns ErrTicketNotFound
// when no such ticket exists.
func (r *TicketRepo) VoidByID(ctx context.Context, id uint64) error {
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

	var sessionID uint64
	err = tx.QueryRowContext(ctx, `SELECT session_id FROM tickets WHERE id = ? FOR UPDATE`, id).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET remaining_seats = remaining_seats + 1 WHERE id = ?`, sessionID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
