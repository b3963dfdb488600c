package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticketing/internal/booking"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/queue"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// SeatBooker is the slice of the booking service the ticket endpoints
// need.  Tests substitute a stub.
type SeatBooker interface {
	PurchaseSeat(ctx context.Context, sessionID, userID uint64, seat uint32) (*model.Ticket, error)
	FreeSeats(ctx context.Context, sessionID uint64) ([]uint32, error)
}

// freeSeatsKey is the JSON key of the availability response.  Clients
// depend on this exact wording.
const freeSeatsKey = "Available seats for this session"

// TicketHandler serves seat purchase, availability and ticket listing
// endpoints.
type TicketHandler struct {
	Booker   SeatBooker
	Tickets  *repository.TicketRepo
	Sessions *repository.SessionRepo
	Films    *repository.FilmRepo
	Log      *zap.Logger

	// Publish is called after a purchase commits.  Overridable in
	// tests; nil disables event publishing.
	Publish func(ctx context.Context, ev queue.TicketIssuedEvent) error
}

func NewTicketHandler(b SeatBooker, t *repository.TicketRepo, s *repository.SessionRepo, f *repository.FilmRepo, log *zap.Logger) *TicketHandler {
	if b == nil || t == nil || s == nil || f == nil || log == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{
		Booker:   b,
		Tickets:  t,
		Sessions: s,
		Films:    f,
		Log:      log,
		Publish:  queue.PublishTicketIssued,
	}
}

type purchaseReq struct {
	SessionID uint64 `json:"session_id" validate:"required,gt=0"`
	Seat      uint32 `json:"seat" validate:"required,gt=0"`
	// UserID lets an admin buy on behalf of another user.  Ignored
	// for everyone else.
	UserID uint64 `json:"user_id,omitempty"`
}

// Purchase books one seat for the authenticated user.  A taken seat or
// a sold-out session answers 409; the taken-seat payload includes the
// currently occupied seats so clients can offer an alternative.
func (h *TicketHandler) Purchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.UserID != 0 && req.UserID != userID {
		if role, _ := c.Get(middleware.CtxRole).(string); role != model.RoleAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot buy for another user"})
		}
		userID = req.UserID
	}

	ctx := c.Request().Context()
	ticket, err := h.Booker.PurchaseSeat(ctx, req.SessionID, userID, req.Seat)
	if err != nil {
		var taken *booking.SeatTakenError
		switch {
		case errors.As(err, &taken):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":          "seat already taken",
				"seat":           taken.Seat,
				"occupied_seats": taken.Occupied,
			})
		case errors.Is(err, booking.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is sold out"})
		case errors.Is(err, booking.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, booking.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, booking.ErrInvalidSeat), errors.Is(err, booking.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
		}
	}

	h.publishIssued(ticket)

	return c.JSON(http.StatusCreated, ticket)
}

// publishIssued emits a ticket.issued event in the background.
// Publishing is best-effort; the ticket is already committed.
func (h *TicketHandler) publishIssued(t *model.Ticket) {
	if h.Publish == nil {
		return
	}
	ev := queue.TicketIssuedEvent{
		EventID:   uuid.NewString(),
		TicketID:  t.ID,
		UserID:    t.UserID,
		SessionID: t.SessionID,
		Seat:      t.Seat,
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s, err := h.Sessions.GetByID(ctx, t.SessionID); err == nil {
			ev.HallID = s.HallID
			ev.StartedAt = s.StartedAt.UTC().Format(sessionTimeLayout)
			if f, err := h.Films.GetByID(ctx, s.FilmID); err == nil {
				ev.FilmName = f.Name
			}
		}
		if err := h.Publish(ctx, ev); err != nil {
			h.Log.Warn("publish ticket.issued failed",
				zap.String("event_id", ev.EventID),
				zap.Uint64("ticket_id", ev.TicketID),
				zap.Error(err))
		}
	}()
}

// FreeSeats lists the unsold seat numbers of a session.
func (h *TicketHandler) FreeSeats(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	seats, err := h.Booker.FreeSeats(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{freeSeatsKey: seats})
}

// MyTickets lists the authenticated user's tickets, paginated.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pageParams(c)

	tickets, err := h.Tickets.ListByUser(c.Request().Context(), userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     tickets,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListAll returns every ticket in the system.  Admin only.
func (h *TicketHandler) ListAll(c echo.Context) error {
	tickets, err := h.Tickets.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets})
}

// Void cancels a ticket and returns its seat to the session's pool.
// Admin only.
func (h *TicketHandler) Void(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Tickets.VoidByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "void ticket failed"})
	}
	h.Log.Info("ticket voided", zap.Uint64("ticket_id", id))
	return c.NoContent(http.StatusNoContent)
}

// BySession lists the tickets sold for one session.  Admin only.
func (h *TicketHandler) BySession(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		if err == repository.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tickets, err := h.Tickets.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	n, err := h.Tickets.CountBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets, "total": n})
}
