package model

import "time"

// Hall represents an individual screening hall.  Each hall has a
// fixed seat capacity which seeds the remaining-seat counter of
// every session scheduled in it.  This struct corresponds to a row
// in the `halls` table.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – unique hall name.
//	Capacity  – total number of seats in the hall.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Hall struct {
	ID        uint64    // halls.id
	Name      string    // halls.name
	Capacity  uint32    // halls.capacity
	CreatedAt time.Time // halls.created_at
	UpdatedAt time.Time // halls.updated_at
}
