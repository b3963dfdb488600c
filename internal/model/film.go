package model

import "time"

// Film represents a movie that sessions can be scheduled for.
// Films are linked to actors through the `film_actors` join table.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – film title.
//	Genre     – genre label used by session filters.
//	Director  – director's full name.
//	Image     – poster image URL.
//	Rating    – aggregate rating (0–10).
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Film struct {
	ID        uint64    // films.id
	Name      string    // films.name
	Genre     string    // films.genre
	Director  string    // films.director
	Image     string    // films.image
	Rating    float64   // films.rating
	CreatedAt time.Time // films.created_at
	UpdatedAt time.Time // films.updated_at
}

// Actor is a cast member.  The film/actor relation is many-to-many.
type Actor struct {
	ID      uint64 // actors.id
	Name    string // actors.name
	Surname string // actors.surname
}
