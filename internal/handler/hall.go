package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// HallHandler serves the hall management endpoints.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(hr *repository.HallRepo) *HallHandler {
	if hr == nil {
		panic("nil repository passed to NewHallHandler")
	}
	return &HallHandler{Halls: hr}
}

type hallReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity uint32 `json:"capacity" validate:"required,gt=0"`
}

type hallResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Capacity uint32 `json:"capacity"`
}

func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	hall := &model.Hall{Name: req.Name, Capacity: req.Capacity}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hall failed"})
	}
	return c.JSON(http.StatusCreated, hallResp{ID: hall.ID, Name: hall.Name, Capacity: hall.Capacity})
}

func (h *HallHandler) List(c echo.Context) error {
	halls, err := h.Halls.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]hallResp, 0, len(halls))
	for _, hall := range halls {
		out = append(out, hallResp{ID: hall.ID, Name: hall.Name, Capacity: hall.Capacity})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *HallHandler) Get(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrHallNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, hallResp{ID: hall.ID, Name: hall.Name, Capacity: hall.Capacity})
}

type hallPatchReq struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Capacity *uint32 `json:"capacity" validate:"omitempty,gt=0"`
}

// Update patches name and/or capacity.  Capacity changes affect only
// sessions created afterwards; existing sessions keep their seeded
// seat count.
func (h *HallHandler) Update(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hallPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	err := h.Halls.Update(c.Request().Context(), id, req.Name, req.Capacity)
	switch err {
	case nil:
	case repository.ErrNoChange:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	case repository.ErrHallNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update hall failed"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, hallResp{ID: hall.ID, Name: hall.Name, Capacity: hall.Capacity})
}

// Delete refuses to remove a hall that still has sessions scheduled.
func (h *HallHandler) Delete(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err := h.Halls.DeleteByID(c.Request().Context(), id)
	switch err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrHallNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "hall has scheduled sessions"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete hall failed"})
	}
}
