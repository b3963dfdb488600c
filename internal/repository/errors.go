// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking service to distinguish between different
// failure scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicateSeat is returned by TicketRepo.InsertTx when the
// composite unique key on (session_id, seat) rejects the row,
// meaning another ticket for the same seat was committed first.
var ErrDuplicateSeat = errors.New("seat already ticketed for session")

// ErrNoCapacity is returned by SessionRepo.DecrementSeatsTx when the
// conditional update matched no row because remaining_seats was
// already zero. The counter is never driven below zero.
var ErrNoCapacity = errors.New("no remaining capacity")
