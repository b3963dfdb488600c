package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// ActorHandler serves the actor catalogue endpoints.
type ActorHandler struct {
	Actors *repository.ActorRepo
}

func NewActorHandler(a *repository.ActorRepo) *ActorHandler {
	if a == nil {
		panic("nil repository passed to NewActorHandler")
	}
	return &ActorHandler{Actors: a}
}

type actorReq struct {
	Name    string `json:"name" validate:"required,max=100"`
	Surname string `json:"surname" validate:"required,max=100"`
}

func (h *ActorHandler) Create(c echo.Context) error {
	var req actorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a := &model.Actor{Name: req.Name, Surname: req.Surname}
	if err := h.Actors.Create(c.Request().Context(), a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create actor failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": a.ID, "name": a.Name, "surname": a.Surname})
}

func (h *ActorHandler) List(c echo.Context) error {
	actors, err := h.Actors.ListAll(c.Request().Context())
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

func (h *ActorHandler) Get(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Actors.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": a.ID, "name": a.Name, "surname": a.Surname})
}

// Delete removes an actor and its film links.
func (h *ActorHandler) Delete(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Actors.DeleteByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrActorNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete actor failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
