package model

import "time"

// Session represents a scheduled screening of a film in a hall at a
// given time.  RemainingSeats starts at the hall capacity (or an
// explicit override on creation) and is decremented by exactly one
// for every ticket sold.  The counter never goes negative: the
// decrement is a conditional update and the purchase transaction
// checks it before writing a ticket.
//
// Fields:
//
//	ID             – primary key identifier.
//	StartedAt      – when the screening begins (UTC).
//	HallID         – hall where the screening takes place.
//	FilmID         – film being screened.
//	RemainingSeats – unsold capacity for this session.
//	CreatedAt      – creation timestamp.
//	UpdatedAt      – last update timestamp.
type Session struct {
	ID             uint64    // sessions.id
	StartedAt      time.Time // sessions.started_at
	HallID         uint64    // sessions.hall_id
	FilmID         uint64    // sessions.film_id
	RemainingSeats uint32    // sessions.remaining_seats
	CreatedAt      time.Time // sessions.created_at
	UpdatedAt      time.Time // sessions.updated_at
}
