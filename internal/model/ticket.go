package model

// Ticket grants one user one seat for one session.  A ticket is
// written exactly once by the purchase transaction and is immutable
// afterwards.  Seat numbers are unique per session; the `tickets`
// table enforces this with a composite unique key on
// (session_id, seat).
//
// Fields:
//
//	ID        – primary key identifier.
//	Seat      – seat number, 1-based, bounded by the session's total capacity.
//	UserID    – purchasing user.
//	SessionID – session the seat belongs to.
type Ticket struct {
	ID        uint64 `json:"id"`         // tickets.id
	Seat      uint32 `json:"seat"`       // tickets.seat
	UserID    uint64 `json:"user_id"`    // tickets.user_id
	SessionID uint64 `json:"session_id"` // tickets.session_id
}
