package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// ErrFilmNotFound is returned when a film lookup fails.
var ErrFilmNotFound = errors.New("film not found")

// FilmRepo manages persistence for films and the film/actor relation.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the given DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

const filmColumns = `id, name, genre, director, image, rating, created_at, updated_at`

// Create inserts a new film and assigns the generated ID back to the
// struct.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	const q = `INSERT INTO films (name, genre, director, image, rating) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Genre, f.Director, f.Image, f.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	const sel = `SELECT ` + filmColumns + ` FROM films WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, f.ID).
		Scan(&f.ID, &f.Name, &f.Genre, &f.Director, &f.Image, &f.Rating, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID retrieves a film by its ID.  Returns ErrFilmNotFound when
// no row matches.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM films WHERE id = ?`
	var f model.Film
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&f.ID, &f.Name, &f.Genre, &f.Director, &f.Image, &f.Rating, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListAll returns every film ordered by ID ascending.
func (r *FilmRepo) ListAll(ctx context.Context) ([]model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM films ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Film, 0)
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Name, &f.Genre, &f.Director, &f.Image, &f.Rating, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FilmPatch lists the optional fields accepted by Update.  Nil fields
// are left untouched.
type FilmPatch struct {
	Name     *string
	Genre    *string
	Director *string
	Image    *string
	Rating   *float64
}

// Update applies a patch to an existing film.  Returns
// ErrFilmNotFound when the film does not exist and ErrNoChange when
// the patch is empty.
func (r *FilmRepo) Update(ctx context.Context, id uint64, p FilmPatch) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *p.Genre)
	}
	if p.Director != nil {
		sets = append(sets, "director = ?")
		args = append(args, *p.Director)
	}
	if p.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *p.Image)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if len(sets) == 0 {
		return ErrNoChange
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	q := "UPDATE films SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// DeleteByID removes a film together with its sessions, their tickets
// and its actor links, all in one transaction.
func (r *FilmRepo) DeleteByID(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`DELETE t FROM tickets t JOIN sessions s ON s.id = t.session_id WHERE s.film_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE film_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM film_actors WHERE film_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM films WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFilmNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// LinkActor associates an actor with a film.  Inserting the same pair
// twice is a no-op.
func (r *FilmRepo) LinkActor(ctx context.Context, filmID, actorID uint64) error {
	const q = `INSERT IGNORE INTO film_actors (film_id, actor_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, q, filmID, actorID)
	return err
}

// ActorsByFilm returns the cast of a film ordered by actor ID.
func (r *FilmRepo) ActorsByFilm(ctx context.Context, filmID uint64) ([]model.Actor, error) {
	const q = `SELECT a.id, a.name, a.surname
	           FROM actors a
	           JOIN film_actors fa ON fa.actor_id = a.id
	           WHERE fa.film_id = ?
	           ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Actor, 0)
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.Surname); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ErrNoChange indicates an UPDATE had nothing to apply.
var ErrNoChange = errors.New("no change")
