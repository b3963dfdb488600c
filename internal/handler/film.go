package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// FilmHandler serves the film catalogue endpoints.
type FilmHandler struct {
	Films   *repository.FilmRepo
	Actors  *repository.ActorRepo
	Tickets *repository.TicketRepo
}

func NewFilmHandler(f *repository.FilmRepo, a *repository.ActorRepo, t *repository.TicketRepo) *FilmHandler {
	if f == nil || a == nil || t == nil {
		panic("nil repository passed to NewFilmHandler")
	}
	return &FilmHandler{Films: f, Actors: a, Tickets: t}
}

type filmReq struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Genre    string  `json:"genre" validate:"required,max=100"`
	Director string  `json:"director" validate:"required,max=255"`
	Image    string  `json:"image" validate:"omitempty,max=512"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
}

type filmResp struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Genre    string  `json:"genre"`
	Director string  `json:"director"`
	Image    string  `json:"image,omitempty"`
	Rating   float64 `json:"rating"`
}

func toFilmResp(f *model.Film) filmResp {
	return filmResp{ID: f.ID, Name: f.Name, Genre: f.Genre, Director: f.Director, Image: f.Image, Rating: f.Rating}
}

func (h *FilmHandler) Create(c echo.Context) error {
	var req filmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	f := &model.Film{Name: req.Name, Genre: req.Genre, Director: req.Director, Image: req.Image, Rating: req.Rating}
	if err := h.Films.Create(c.Request().Context(), f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create film failed"})
	}
	return c.JSON(http.StatusCreated, toFilmResp(f))
}

func (h *FilmHandler) List(c echo.Context) error {
	films, err := h.Films.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]filmResp, 0, len(films))
	for i := range films {
		out = append(out, toFilmResp(&films[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *FilmHandler) Get(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	f, err := h.Films.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toFilmResp(f))
}

type filmPatchReq struct {
	Name     *string  `json:"name" validate:"omitempty,max=255"`
	Genre    *string  `json:"genre" validate:"omitempty,max=100"`
	Director *string  `json:"director" validate:"omitempty,max=255"`
	Image    *string  `json:"image" validate:"omitempty,max=512"`
	Rating   *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

func (h *FilmHandler) Update(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req filmPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	patch := repository.FilmPatch{Name: req.Name, Genre: req.Genre, Director: req.Director, Image: req.Image, Rating: req.Rating}
	err := h.Films.Update(c.Request().Context(), id, patch)
	switch err {
	case nil:
	case repository.ErrNoChange:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	case repository.ErrFilmNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update film failed"})
	}
	f, err := h.Films.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toFilmResp(f))
}

// Delete removes a film together with its sessions, tickets and cast
// links.
func (h *FilmHandler) Delete(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Films.DeleteByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete film failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type linkActorReq struct {
	ActorID uint64 `json:"actor_id" validate:"required,gt=0"`
}

// LinkActor attaches an actor to a film's cast.  Linking the same pair
// twice is a no-op.
func (h *FilmHandler) LinkActor(c echo.Context) error {
	filmID := paramID(c, "id")
	if filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req linkActorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Films.GetByID(ctx, filmID); err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Actors.GetByID(ctx, req.ActorID); err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Films.LinkActor(ctx, filmID, req.ActorID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link actor failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"film_id": filmID, "actor_id": req.ActorID})
}

// Cast lists the actors linked to a film.
func (h *FilmHandler) Cast(c echo.Context) error {
	filmID := paramID(c, "id")
	if filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Films.GetByID(ctx, filmID); err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	actors, err := h.Films.ActorsByFilm(ctx, filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	type actorResp struct {
		ID      uint64 `json:"id"`
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	out := make([]actorResp, 0, len(actors))
	for _, a := range actors {
		out = append(out, actorResp{ID: a.ID, Name: a.Name, Surname: a.Surname})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SoldTickets reports how many tickets have been sold across all
// sessions of a film.
func (h *FilmHandler) SoldTickets(c echo.Context) error {
	filmID := paramID(c, "id")
	if filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	f, err := h.Films.GetByID(ctx, filmID)
	if err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	n, err := h.Tickets.CountByFilm(ctx, filmID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"film_id":      filmID,
		"film_name":    f.Name,
		"sold_tickets": n,
	})
}
