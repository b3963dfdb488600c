package booking

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// SQLStore implements Store over MySQL through the session, ticket
// and user repositories.  Each View/Update call owns one transaction
// acquired from the pool; nothing is shared between requests.
type SQLStore struct {
	db       *sql.DB
	sessions *repository.SessionRepo
	tickets  *repository.TicketRepo
	users    *repository.UserRepo
}

// NewSQLStore constructs a SQLStore from the shared repositories.
func NewSQLStore(db *sql.DB, sessions *repository.SessionRepo, tickets *repository.TicketRepo, users *repository.UserRepo) *SQLStore {
	if db == nil || sessions == nil || tickets == nil || users == nil {
		panic("nil dependency passed to booking.NewSQLStore")
	}
	return &SQLStore{db: db, sessions: sessions, tickets: tickets, users: users}
}

var _ Store = (*SQLStore)(nil)

type sqlTx struct {
	tx       *sql.Tx
	store    *SQLStore
	writable bool
}

// View runs fn inside a read-only transaction; InnoDB's consistent
// read gives the snapshot guarantee without locking any rows.
func (s *SQLStore) View(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(&sqlTx{tx: tx, store: s}); err != nil {
		return err
	}
	return tx.Commit()
}

// Update runs fn inside a read-write transaction, committing only
// when fn succeeds.
func (s *SQLStore) Update(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx, store: s, writable: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (t *sqlTx) Session(ctx context.Context, id uint64) (*model.Session, error) {
	if t.writable {
		return t.store.sessions.GetForUpdateTx(ctx, t.tx, id)
	}
	return t.store.sessions.GetTx(ctx, t.tx, id)
}

func (t *sqlTx) OccupiedSeats(ctx context.Context, sessionID uint64) ([]uint32, error) {
	return t.store.tickets.OccupiedSeatsTx(ctx, t.tx, sessionID)
}

func (t *sqlTx) UserExists(ctx context.Context, id uint64) (bool, error) {
	return t.store.users.ExistsTx(ctx, t.tx, id)
}

func (t *sqlTx) InsertTicket(ctx context.Context, tk *model.Ticket) error {
	return t.store.tickets.InsertTx(ctx, t.tx, tk)
}

func (t *sqlTx) DecrementSeats(ctx context.Context, sessionID uint64) error {
	return t.store.sessions.DecrementSeatsTx(ctx, t.tx, sessionID)
}
