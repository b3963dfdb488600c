package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// UserStore is the slice of the user repository the auth and user
// endpoints need.  Tests substitute a stub.
type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch, cost int) error
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	DeleteByID(ctx context.Context, id uint64) error
}

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
}

func NewUserHandler(u UserStore, bcryptCost int) *UserHandler {
	if u == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: u, BcryptCost: bcryptCost}
}

type userResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Age      uint32 `json:"age"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserResp(u *model.User) userResp {
	return userResp{ID: u.ID, Name: u.Name, Age: u.Age, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func (h *UserHandler) Get(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(&u))
}

type userPatchReq struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Age      *uint32 `json:"age" validate:"omitempty,lte=150"`
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN CUSTOMER"`
}

// Update patches any subset of a user's fields.  A new password is
// rehashed; a new role takes effect when the user next logs in,
// already-issued access tokens keep their old role claim until expiry.
func (h *UserHandler) Update(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		req.Role = &role
	}
	patch := repository.UserPatch{
		Name:     req.Name,
		Age:      req.Age,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	err := h.Users.Update(c.Request().Context(), id, patch, h.BcryptCost)
	switch err {
	case nil:
	case repository.ErrNoChange:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	case repository.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case repository.ErrUsernameExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(&u))
}

// Delete removes a user along with their tickets and refresh tokens.
func (h *UserHandler) Delete(c echo.Context) error {
	id := paramID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Users.DeleteByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
