package repository

import (
	"context"
	"strings"
	"time"
)

// SessionSearchQuery defines filters for searching upcoming sessions.
// All filters are optional and combined with AND.  SortByStart orders
// results by start time instead of ID.
type SessionSearchQuery struct {
	Genre       string
	FilmName    string
	ActorName   string
	Director    string
	StartedAt   *time.Time
	SortByStart bool
}

// SessionRow is the flattened row returned by SearchUpcoming.  It
// carries the film name alongside the session fields so listings do
// not need a second query.
type SessionRow struct {
	ID             uint64 `json:"id"`
	StartedAt      string `json:"started_at"`
	FilmID         uint64 `json:"film_id"`
	FilmName       string `json:"film_name"`
	HallID         uint64 `json:"hall_id"`
	RemainingSeats uint32 `json:"remaining_seats"`
}

// SearchUpcoming returns sessions that have not started yet, filtered
// by the query.  The actor filter joins through film_actors; the
// other filters match film columns exactly, mirroring the behavior of
// the public listing endpoint.
func (r *SessionRepo) SearchUpcoming(ctx context.Context, q SessionSearchQuery) ([]SessionRow, error) {
	where := []string{"s.started_at >= NOW()"}
	args := []any{}

	if q.Genre != "" {
		where = append(where, "f.genre = ?")
		args = append(args, q.Genre)
	}
	if q.FilmName != "" {
		where = append(where, "f.name = ?")
		args = append(args, q.FilmName)
	}
	if q.Director != "" {
		where = append(where, "f.director = ?")
		args = append(args, q.Director)
	}
	if q.StartedAt != nil {
		where = append(where, "s.started_at = ?")
		args = append(args, q.StartedAt.UTC())
	}

	join := `JOIN films f ON f.id = s.film_id`
	if q.ActorName != "" {
		join += ` JOIN film_actors fa ON fa.film_id = f.id JOIN actors a ON a.id = fa.actor_id`
		where = append(where, "a.name = ?")
		args = append(args, q.ActorName)
	}

	order := "s.id"
	if q.SortByStart {
		order = "s.started_at ASC, s.id"
	}

	sqlQ := `SELECT DISTINCT
			s.id,
			DATE_FORMAT(s.started_at, '%Y-%m-%d %T') AS started_at,
			s.film_id,
			f.name AS film_name,
			s.hall_id,
			s.remaining_seats
		FROM sessions s
		` + join + `
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, sqlQ, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionRow, 0)
	for rows.Next() {
		var d SessionRow
		if err := rows.Scan(&d.ID, &d.StartedAt, &d.FilmID, &d.FilmName, &d.HallID, &d.RemainingSeats); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
