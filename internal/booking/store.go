package booking

import (
	"context"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// Tx is the set of operations the purchase transaction and the
// availability snapshot run against the backing store.  Every method
// observes the same transactional snapshot; writes commit together or
// not at all.
//
// Implementations return repository.ErrDuplicateSeat from
// InsertTicket when the (session_id, seat) uniqueness constraint
// rejects the row, and repository.ErrNoCapacity from DecrementSeats
// when remaining_seats was already zero.  Session returns
// repository.ErrSessionNotFound for unknown IDs.
type Tx interface {
	// Session loads the session record.  Writable transactions lock
	// the row for the duration of the transaction.
	Session(ctx context.Context, id uint64) (*model.Session, error)

	// OccupiedSeats returns the seat numbers of all tickets issued
	// for the session, ascending.
	OccupiedSeats(ctx context.Context, sessionID uint64) ([]uint32, error)

	// UserExists reports whether the user record is present.
	UserExists(ctx context.Context, id uint64) (bool, error)

	// InsertTicket writes a ticket and assigns its ID.
	InsertTicket(ctx context.Context, t *model.Ticket) error

	// DecrementSeats reduces the session's remaining_seats by one,
	// refusing to pass below zero.
	DecrementSeats(ctx context.Context, sessionID uint64) error
}

// Store provides transactional access to the session registry and the
// ticket ledger.
type Store interface {
	// View runs fn against a read-only consistent snapshot.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a read-write transaction, committing when fn
	// returns nil and rolling back otherwise.
	Update(ctx context.Context, fn func(Tx) error) error
}
