package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop())
}

func TestFreeSeatsFullCapacity(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 50)
	svc := newTestService(store)

	free, err := svc.FreeSeats(context.Background(), 1)
	if err != nil {
		t.Fatalf("FreeSeats: %v", err)
	}
	if len(free) != 50 {
		t.Fatalf("expected 50 free seats, got %d", len(free))
	}
	for i, seat := range free {
		if seat != uint32(i+1) {
			t.Fatalf("expected seat %d at position %d, got %d", i+1, i, seat)
		}
	}
}

func TestFreeSeatsSkipsOccupied(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 3)
	store.addTicket(1, 2)
	store.addTicket(1, 5)
	svc := newTestService(store)

	free, err := svc.FreeSeats(context.Background(), 1)
	if err != nil {
		t.Fatalf("FreeSeats: %v", err)
	}
	want := []uint32{1, 3, 4}
	if len(free) != len(want) {
		t.Fatalf("expected %v, got %v", want, free)
	}
	for i := range want {
		if free[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, free)
		}
	}
}

func TestFreeSeatsUnknownSession(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.FreeSeats(context.Background(), 99); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestFreeSeatsFunction(t *testing.T) {
	tests := []struct {
		name      string
		occupied  []uint32
		remaining uint32
		want      []uint32
	}{
		{"empty session", nil, 4, []uint32{1, 2, 3, 4}},
		{"no capacity left", []uint32{1, 2, 3}, 0, []uint32{}},
		{"gaps in the middle", []uint32{1, 4}, 2, []uint32{2, 3}},
		{"single seat hall", nil, 1, []uint32{1}},
		{"everything empty", nil, 0, []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := freeSeats(tt.occupied, tt.remaining)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestPurchaseSeat(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 80)
	store.addUser(7)
	svc := newTestService(store)

	ticket, err := svc.PurchaseSeat(context.Background(), 1, 7, 75)
	if err != nil {
		t.Fatalf("PurchaseSeat: %v", err)
	}
	if ticket.Seat != 75 || ticket.UserID != 7 || ticket.SessionID != 1 {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if ticket.ID == 0 {
		t.Fatal("ticket ID was not assigned")
	}
	if got := store.remaining(1); got != 79 {
		t.Fatalf("expected remaining 79 after purchase, got %d", got)
	}

	// Immediate repeat purchase of the same seat must be rejected with
	// the occupied list in the payload.
	_, err = svc.PurchaseSeat(context.Background(), 1, 7, 75)
	var taken *SeatTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected SeatTakenError, got %v", err)
	}
	if len(taken.Occupied) != 1 || taken.Occupied[0] != 75 {
		t.Fatalf("expected occupied list [75], got %v", taken.Occupied)
	}
}

func TestPurchaseSoldOut(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 0)
	store.addUser(7)
	svc := newTestService(store)

	if _, err := svc.PurchaseSeat(context.Background(), 1, 7, 1); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("expected ErrSoldOut, got %v", err)
	}
}

func TestPurchaseUnknownSession(t *testing.T) {
	store := newMemStore()
	store.addUser(7)
	svc := newTestService(store)

	if _, err := svc.PurchaseSeat(context.Background(), 42, 7, 1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPurchaseUnknownUser(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 10)
	svc := newTestService(store)

	if _, err := svc.PurchaseSeat(context.Background(), 1, 7, 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPurchaseSeatBounds(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 10)
	store.addUser(7)
	svc := newTestService(store)

	if _, err := svc.PurchaseSeat(context.Background(), 1, 7, 0); !errors.Is(err, ErrInvalidSeat) {
		t.Fatalf("expected ErrInvalidSeat for seat 0, got %v", err)
	}
	// Total capacity is 10 (no tickets yet), so seat 11 is out of range.
	if _, err := svc.PurchaseSeat(context.Background(), 1, 7, 11); !errors.Is(err, ErrInvalidSeat) {
		t.Fatalf("expected ErrInvalidSeat for seat 11, got %v", err)
	}
	if _, err := svc.PurchaseSeat(context.Background(), 0, 7, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for session 0, got %v", err)
	}
	if _, err := svc.PurchaseSeat(context.Background(), 1, 0, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for user 0, got %v", err)
	}
}

func TestCapacityConservation(t *testing.T) {
	const initial = 20
	store := newMemStore()
	store.addSession(1, initial)
	store.addUser(7)
	svc := newTestService(store)

	for seat := uint32(1); seat <= 12; seat++ {
		if _, err := svc.PurchaseSeat(context.Background(), 1, 7, seat); err != nil {
			t.Fatalf("seat %d: %v", seat, err)
		}
	}
	sold := store.ticketCount(1)
	remaining := store.remaining(1)
	if uint32(sold)+remaining != initial {
		t.Fatalf("capacity not conserved: sold=%d remaining=%d initial=%d", sold, remaining, initial)
	}

	// Free seats and occupied seats partition [1, initial].
	free, err := svc.FreeSeats(context.Background(), 1)
	if err != nil {
		t.Fatalf("FreeSeats: %v", err)
	}
	if len(free)+sold != initial {
		t.Fatalf("free+sold=%d, want %d", len(free)+sold, initial)
	}
	for _, seat := range free {
		if seat <= 12 {
			t.Fatalf("seat %d is occupied but listed free", seat)
		}
	}
}

func TestConcurrentSameSeat(t *testing.T) {
	const workers = 32
	store := newMemStore()
	store.addSession(1, 100)
	for i := uint64(1); i <= workers; i++ {
		store.addUser(i)
	}
	svc := newTestService(store)

	var success, seatTaken, other int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := uint64(1); i <= workers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			<-start
			_, err := svc.PurchaseSeat(context.Background(), 1, userID, 50)
			var taken *SeatTakenError
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case errors.As(err, &taken):
				atomic.AddInt64(&seatTaken, 1)
			default:
				atomic.AddInt64(&other, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if success != 1 {
		t.Fatalf("expected exactly 1 success, got %d", success)
	}
	if seatTaken != workers-1 {
		t.Fatalf("expected %d seat-taken rejections, got %d (other errors: %d)", workers-1, seatTaken, other)
	}
	if got := store.remaining(1); got != 99 {
		t.Fatalf("expected remaining 99, got %d", got)
	}
}

func TestConcurrentLastSeat(t *testing.T) {
	const workers = 8
	store := newMemStore()
	store.addSession(1, 1)
	for i := uint64(1); i <= workers; i++ {
		store.addUser(i)
	}
	svc := newTestService(store)

	var success, soldOut int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := uint64(1); i <= workers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			<-start
			// Everyone asks for a different seat; only capacity limits them.
			_, err := svc.PurchaseSeat(context.Background(), 1, userID, uint32(userID))
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case errors.Is(err, ErrSoldOut):
				atomic.AddInt64(&soldOut, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if success != 1 || soldOut != workers-1 {
		t.Fatalf("expected 1 success and %d sold-out, got %d/%d", workers-1, success, soldOut)
	}
	if got := store.remaining(1); got != 0 {
		t.Fatalf("expected remaining 0, got %d", got)
	}
}

func TestConcurrentDistinctSessions(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 5)
	store.addSession(2, 5)
	store.addUser(7)
	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, sessionID := range []uint64{1, 2} {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := svc.PurchaseSeat(context.Background(), id, 7, 3)
			errs <- err
		}(sessionID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("cross-session purchase failed: %v", err)
		}
	}
	if store.remaining(1) != 4 || store.remaining(2) != 4 {
		t.Fatalf("sessions interfered: remaining %d/%d", store.remaining(1), store.remaining(2))
	}
}

func TestConcurrentDrainSession(t *testing.T) {
	// Hammer one session with more buyers than capacity across random
	// seats: every seat sells at most once and the counter lands on
	// zero with capacity conserved.
	const capacity = 10
	const workers = 40
	store := newMemStore()
	store.addSession(1, capacity)
	for i := uint64(1); i <= workers; i++ {
		store.addUser(i)
	}
	svc := newTestService(store)

	var success, rejected int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := uint64(1); i <= workers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			<-start
			seat := uint32(userID%capacity) + 1
			_, err := svc.PurchaseSeat(context.Background(), 1, userID, seat)
			var taken *SeatTakenError
			switch {
			case err == nil:
				atomic.AddInt64(&success, 1)
			case errors.As(err, &taken), errors.Is(err, ErrSoldOut):
				atomic.AddInt64(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if success != capacity {
		t.Fatalf("expected %d successes, got %d (rejected %d)", capacity, success, rejected)
	}
	if got := store.remaining(1); got != 0 {
		t.Fatalf("expected remaining 0, got %d", got)
	}
	if got := store.ticketCount(1); got != capacity {
		t.Fatalf("expected %d tickets, got %d", capacity, got)
	}
}

func TestPurchaseDuplicateKeyBackstop(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 10)
	store.addUser(7)
	store.addTicket(1, 2)
	store.addTicket(1, 8)
	// Simulate a writer in another process committing seat 5 after
	// the occupied snapshot was taken.
	store.failInsert = func(*model.Ticket) error { return repository.ErrDuplicateSeat }
	svc := newTestService(store)

	_, err := svc.PurchaseSeat(context.Background(), 1, 7, 5)
	var taken *SeatTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected SeatTakenError, got %v", err)
	}
	// The rejected seat is merged into the list at its sorted position.
	want := []uint32{2, 5, 8}
	if len(taken.Occupied) != len(want) {
		t.Fatalf("occupied = %v, want %v", taken.Occupied, want)
	}
	for i := range want {
		if taken.Occupied[i] != want[i] {
			t.Fatalf("occupied = %v, want %v", taken.Occupied, want)
		}
	}
	if got := store.remaining(1); got != 10 {
		t.Fatalf("rejection must not change remaining, got %d", got)
	}
	if got := store.ticketCount(1); got != 2 {
		t.Fatalf("rejection must not add tickets, got %d", got)
	}
}

func TestPurchaseDecrementBackstop(t *testing.T) {
	store := newMemStore()
	store.addSession(1, 10)
	store.addUser(7)
	store.failDecrement = func(uint64) error { return repository.ErrNoCapacity }
	svc := newTestService(store)

	if _, err := svc.PurchaseSeat(context.Background(), 1, 7, 3); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	// The whole transaction rolls back, including the ticket insert.
	if got := store.ticketCount(1); got != 0 {
		t.Fatalf("expected 0 tickets after rollback, got %d", got)
	}
	if got := store.remaining(1); got != 10 {
		t.Fatalf("expected remaining 10 after rollback, got %d", got)
	}
}

func TestInsertSeat(t *testing.T) {
	tests := []struct {
		name  string
		seats []uint32
		seat  uint32
		want  []uint32
	}{
		{"empty", nil, 5, []uint32{5}},
		{"front", []uint32{3, 7}, 1, []uint32{1, 3, 7}},
		{"middle", []uint32{3, 7}, 5, []uint32{3, 5, 7}},
		{"back", []uint32{3, 7}, 9, []uint32{3, 7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]uint32(nil), tt.seats...)
			got := insertSeat(in, tt.seat)
			if len(got) != len(tt.want) {
				t.Fatalf("insertSeat(%v, %d) = %v, want %v", tt.seats, tt.seat, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("insertSeat(%v, %d) = %v, want %v", tt.seats, tt.seat, got, tt.want)
				}
			}
			for i := range tt.seats {
				if in[i] != tt.seats[i] {
					t.Fatalf("input slice was modified: %v", in)
				}
			}
		})
	}
}
