package booking

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Service orchestrates seat purchases and availability queries.  A
// purchase for a given session runs under a per-session mutex so
// validate-then-write is serialized within the process; the storage
// layer backstops it with a row lock on the session, a conditional
// capacity decrement and the (session_id, seat) unique key, which
// also covers deployments running more than one instance.
type Service struct {
	store Store
	log   *zap.Logger

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewService constructs a Service.  The logger must be non-nil; pass
// zap.NewNop() in tests that do not care about output.
func NewService(store Store, log *zap.Logger) *Service {
	if store == nil || log == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		store: store,
		log:   log,
		locks: make(map[uint64]*sync.Mutex),
	}
}

// sessionLock returns the mutex guarding purchases for one session,
// creating it on first use.  Locks are never removed: the map grows
// with the number of distinct sessions purchased against, which is
// bounded by the sessions table.
func (s *Service) sessionLock(sessionID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// PurchaseSeat validates and executes a ticket purchase.  The
// preconditions are checked in order against one transactional
// snapshot: the session must exist, capacity must remain, and the
// seat must be free and within the session's total capacity.  On
// success the ticket insert and the capacity decrement commit
// together.
//
// Rejections: ErrSessionNotFound, ErrUserNotFound, ErrSoldOut,
// *SeatTakenError (carrying the occupied list), ErrInvalidSeat,
// ErrInvalidInput.
func (s *Service) PurchaseSeat(ctx context.Context, sessionID, userID uint64, seat uint32) (*model.Ticket, error) {
	if sessionID == 0 || userID == 0 {
		return nil, ErrInvalidInput
	}
	if seat == 0 {
		return nil, ErrInvalidSeat
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var ticket *model.Ticket
	err := s.store.Update(ctx, func(tx Tx) error {
		sess, err := tx.Session(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		ok, err := tx.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		if sess.RemainingSeats == 0 {
			return ErrSoldOut
		}
		occupied, err := tx.OccupiedSeats(ctx, sessionID)
		if err != nil {
			return err
		}
		for _, taken := range occupied {
			if taken == seat {
				return &SeatTakenError{Seat: seat, Occupied: occupied}
			}
		}
		total := uint32(len(occupied)) + sess.RemainingSeats
		if seat > total {
			return ErrInvalidSeat
		}

		t := &model.Ticket{Seat: seat, UserID: userID, SessionID: sessionID}
		if err := tx.InsertTicket(ctx, t); err != nil {
			if errors.Is(err, repository.ErrDuplicateSeat) {
				// Unique-key backstop fired: another writer outside this
				// process committed the seat between snapshot and insert.
				return &SeatTakenError{Seat: seat, Occupied: insertSeat(occupied, seat)}
			}
			return err
		}
		if err := tx.DecrementSeats(ctx, sessionID); err != nil {
			if errors.Is(err, repository.ErrNoCapacity) {
				// Capacity was observed positive under the session lock, so
				// a failed decrement means the counter and the ledger have
				// diverged.  Roll back and surface as a logic bug.
				s.log.Error("capacity decrement failed after validation",
					zap.Uint64("session_id", sessionID),
					zap.Uint32("seat", seat))
				return ErrInvalidState
			}
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ticket issued",
		zap.Uint64("ticket_id", ticket.ID),
		zap.Uint64("session_id", sessionID),
		zap.Uint64("user_id", userID),
		zap.Uint32("seat", seat))
	return ticket, nil
}

// FreeSeats returns the ascending list of unsold seat numbers for a
// session.  Total capacity is derived from the ledger and the
// counter: len(occupied) + remaining_seats.  The read runs in one
// read-only transaction so no seat appears both occupied and free.
func (s *Service) FreeSeats(ctx context.Context, sessionID uint64) ([]uint32, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}
	var free []uint32
	err := s.store.View(ctx, func(tx Tx) error {
		sess, err := tx.Session(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		occupied, err := tx.OccupiedSeats(ctx, sessionID)
		if err != nil {
			return err
		}
		free = freeSeats(occupied, sess.RemainingSeats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

// freeSeats lists every seat in [1, len(occupied)+remaining] that is
// not occupied, ascending.  Seats are interchangeable numbers; there
// is no row/column layout.
func freeSeats(occupied []uint32, remaining uint32) []uint32 {
	taken := make(map[uint32]struct{}, len(occupied))
	for _, s := range occupied {
		taken[s] = struct{}{}
	}
	total := uint32(len(occupied)) + remaining
	free := make([]uint32, 0, remaining)
	for n := uint32(1); n <= total; n++ {
		if _, ok := taken[n]; !ok {
			free = append(free, n)
		}
	}
	return free
}

// insertSeat returns a copy of the ascending seats list with seat
// merged in at its sorted position.  The input slice is not modified.
func insertSeat(seats []uint32, seat uint32) []uint32 {
	i := 0
	for i < len(seats) && seats[i] < seat {
		i++
	}
	out := make([]uint32, 0, len(seats)+1)
	out = append(out, seats[:i]...)
	out = append(out, seat)
	return append(out, seats[i:]...)
}
