package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// Sessions scheduled in the same hall closer than this are rejected.
const sessionOverlapWindow = 120 * time.Minute

// SessionHandler serves the screening schedule endpoints.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Halls    *repository.HallRepo
	Films    *repository.FilmRepo
}

func NewSessionHandler(s *repository.SessionRepo, h *repository.HallRepo, f *repository.FilmRepo) *SessionHandler {
	if s == nil || h == nil || f == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: s, Halls: h, Films: f}
}

type sessionReq struct {
	StartedAt string `json:"started_at" validate:"required"`
	HallID    uint64 `json:"hall_id" validate:"required,gt=0"`
	FilmID    uint64 `json:"film_id" validate:"required,gt=0"`
}

type sessionResp struct {
	ID             uint64 `json:"id"`
	StartedAt      string `json:"started_at"`
	HallID         uint64 `json:"hall_id"`
	FilmID         uint64 `json:"film_id"`
	RemainingSeats uint32 `json:"remaining_seats"`
}

const sessionTimeLayout = "2006-01-02 15:04:05"

func toSessionResp(s *model.Session) sessionResp {
	return sessionResp{
		ID:             s.ID,
		StartedAt:      s.StartedAt.UTC().Format(sessionTimeLayout),
		HallID:         s.HallID,
		FilmID:         s.FilmID,
		RemainingSeats: s.RemainingSeats,
	}
}

// parseSessionTime accepts either "YYYY-MM-DD hh:mm:ss" or RFC 3339.
func parseSessionTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(sessionTimeLayout, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Create schedules a screening.  The seat pool is seeded from the
// hall's capacity and sessions within two hours of another screening
// in the same hall are rejected.
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	startedAt, ok := parseSessionTime(req.StartedAt)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid started_at"})
	}

	ctx := c.Request().Context()
	hall, err := h.Halls.GetByID(ctx, req.HallID)
	if err != nil {
		if err == repository.ErrHallNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Films.GetByID(ctx, req.FilmID); err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	clash, err := h.Sessions.HasNearbySession(ctx, req.HallID, startedAt, sessionOverlapWindow)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if clash {
		return c.JSON(http.StatusConflict, echo.Map{"error": "hall is occupied around this time"})
	}

	s := &model.Session{
		StartedAt:      startedAt,
		HallID:         req.HallID,
		FilmID:         req.FilmID,
		RemainingSeats: hall.Capacity,
	}
	if err := h.Sessions.Create(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusCreated, toSessionResp(s))
}

// List returns upcoming sessions, optionally filtered by genre,
// film_name, actor_name, director or started_at, sorted by id or by
// start time when sort=started_at.
func (h *SessionHandler) List(c echo.Context) error {
	q := repository.SessionSearchQuery{
		Genre:       strings.TrimSpace(c.QueryParam("genre")),
		FilmName:    strings.TrimSpace(c.QueryParam("film_name")),
		ActorName:   strings.TrimSpace(c.QueryParam("actor_name")),
		Director:    strings.TrimSpace(c.QueryParam("director")),
		SortByStart: strings.EqualFold(strings.TrimSpace(c.QueryParam("sort")), "started_at"),
	}
	if raw := strings.TrimSpace(c.QueryParam("started_at")); raw != "" {
		t, ok := parseSessionTime(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid started_at"})
		}
		q.StartedAt = &t
	}

	rows, err := h.Sessions.SearchUpcoming(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

func (h *SessionHandler) Get(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Sessions.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// ByFilm lists the sessions of one film, paginated.
func (h *SessionHandler) ByFilm(c echo.Context) error {
	filmID := paramID(c, "id")
	if filmID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	page, pageSize := pageParams(c)

	ctx := c.Request().Context()
	if _, err := h.Films.GetByID(ctx, filmID); err != nil {
		if err == repository.ErrFilmNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	sessions, err := h.Sessions.ListByFilm(ctx, filmID, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]sessionResp, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResp(&sessions[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     out,
		"page":      page,
		"page_size": pageSize,
	})
}

// Delete removes a session and all tickets sold for it.
func (h *SessionHandler) Delete(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Sessions.DeleteByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete session failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
