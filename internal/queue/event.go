// Package queue publishes and consumes domain events over RabbitMQ.
package queue

// TicketIssuedEvent is published after a seat purchase commits.  It
// carries enough context for downstream consumers (notifications,
// analytics) to act without querying the primary database.
type TicketIssuedEvent struct {
	EventID   string `json:"event_id"` // uuid, for consumer-side dedupe
	TicketID  uint64 `json:"ticket_id"`
	UserID    uint64 `json:"user_id"`
	SessionID uint64 `json:"session_id"`
	Seat      uint32 `json:"seat"`
	FilmName  string `json:"film_name"`
	HallID    uint64 `json:"hall_id"`
	StartedAt string `json:"started_at"`
	IssuedAt  string `json:"issued_at"`
}
