// Package booking implements the seat-reservation core: computing
// free seats for a session and the atomic ticket-purchase
// transaction.  All rejections are reported through the error values
// in this file so handlers can translate them into responses without
// inspecting storage errors.
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means the referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserNotFound means the purchasing user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSoldOut means the session has no remaining capacity.
	ErrSoldOut = errors.New("session sold out")

	// ErrInvalidSeat means the requested seat number is zero or
	// exceeds the session's total capacity.
	ErrInvalidSeat = errors.New("invalid seat number")

	// ErrInvalidInput means a required identifier was missing or zero.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState signals a broken invariant inside the purchase
	// transaction, such as a capacity decrement failing after
	// remaining capacity was observed under the session lock.  It
	// indicates a logic bug, never user error, and is logged
	// distinctly from ordinary rejections.
	ErrInvalidState = errors.New("invalid reservation state")
)

// SeatTakenError rejects a purchase because the seat already has a
// ticket.  Occupied carries the current occupied-seat list so the
// client can retry with a different seat.
type SeatTakenError struct {
	Seat     uint32
	Occupied []uint32
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %d already taken", e.Seat)
}
