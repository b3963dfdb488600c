package booking

import (
	"context"
	"sync"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// memStore is an in-memory Store with the same transactional contract
// as SQLStore: fn runs against a private copy of the state and the
// copy replaces the state only when fn succeeds.  A single mutex
// serializes transactions, mirroring the row lock the SQL store takes
// on the session.
type memStore struct {
	mu       sync.Mutex
	sessions map[uint64]model.Session
	users    map[uint64]bool
	tickets  []model.Ticket
	nextID   uint64

	// failInsert and failDecrement, when set, run before the real
	// memTx operation and abort it with their error.  Tests use them
	// to simulate another process winning the unique key or draining
	// capacity between snapshot and write.
	failInsert    func(*model.Ticket) error
	failDecrement func(sessionID uint64) error
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uint64]model.Session),
		users:    make(map[uint64]bool),
	}
}

func (m *memStore) addSession(id uint64, remaining uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = model.Session{ID: id, RemainingSeats: remaining}
}

func (m *memStore) addUser(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = true
}

func (m *memStore) addTicket(sessionID uint64, seat uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tickets = append(m.tickets, model.Ticket{ID: m.nextID, Seat: seat, UserID: 1, SessionID: sessionID})
}

func (m *memStore) remaining(sessionID uint64) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID].RemainingSeats
}

func (m *memStore) ticketCount(sessionID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickets {
		if t.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (m *memStore) View(ctx context.Context, fn func(Tx) error) error {
	return m.Update(ctx, fn)
}

func (m *memStore) Update(_ context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{
		sessions:      make(map[uint64]model.Session, len(m.sessions)),
		users:         m.users,
		tickets:       append([]model.Ticket(nil), m.tickets...),
		nextID:        m.nextID,
		failInsert:    m.failInsert,
		failDecrement: m.failDecrement,
	}
	for id, s := range m.sessions {
		tx.sessions[id] = s
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.sessions = tx.sessions
	m.tickets = tx.tickets
	m.nextID = tx.nextID
	return nil
}

type memTx struct {
	sessions      map[uint64]model.Session
	users         map[uint64]bool
	tickets       []model.Ticket
	nextID        uint64
	failInsert    func(*model.Ticket) error
	failDecrement func(sessionID uint64) error
}

func (t *memTx) Session(_ context.Context, id uint64) (*model.Session, error) {
	s, ok := t.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (t *memTx) OccupiedSeats(_ context.Context, sessionID uint64) ([]uint32, error) {
	seats := make([]uint32, 0)
	for _, tk := range t.tickets {
		if tk.SessionID == sessionID {
			seats = append(seats, tk.Seat)
		}
	}
	for i := 1; i < len(seats); i++ {
		for j := i; j > 0 && seats[j-1] > seats[j]; j-- {
			seats[j-1], seats[j] = seats[j], seats[j-1]
		}
	}
	return seats, nil
}

func (t *memTx) UserExists(_ context.Context, id uint64) (bool, error) {
	return t.users[id], nil
}

func (t *memTx) InsertTicket(_ context.Context, tk *model.Ticket) error {
	if t.failInsert != nil {
		if err := t.failInsert(tk); err != nil {
			return err
		}
	}
	for _, existing := range t.tickets {
		if existing.SessionID == tk.SessionID && existing.Seat == tk.Seat {
			return repository.ErrDuplicateSeat
		}
	}
	t.nextID++
	tk.ID = t.nextID
	t.tickets = append(t.tickets, *tk)
	return nil
}

func (t *memTx) DecrementSeats(_ context.Context, sessionID uint64) error {
	if t.failDecrement != nil {
		if err := t.failDecrement(sessionID); err != nil {
			return err
		}
	}
	s, ok := t.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if s.RemainingSeats == 0 {
		return repository.ErrNoCapacity
	}
	s.RemainingSeats--
	t.sessions[sessionID] = s
	return nil
}
