package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/model"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
	"github.com/iliyamo/cinema-ticketing/internal/utils"
)

// Mock user store for testing
type mockUserStore struct {
	createFunc         func(ctx context.Context, u *model.User, password string, cost int) (uint64, error)
	getByUsernameFunc  func(ctx context.Context, username string) (model.User, error)
	getByIDFunc        func(ctx context.Context, id uint64) (model.User, error)
	listAllFunc        func(ctx context.Context) ([]model.User, error)
	updateFunc         func(ctx context.Context, id uint64, p repository.UserPatch, cost int) error
	updatePasswordFunc func(ctx context.Context, id uint64, password string, cost int) error
	deleteByIDFunc     func(ctx context.Context, id uint64) error
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, u, password, cost)
	}
	return 1, nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return model.User{}, nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return model.User{ID: id}, nil
}

func (m *mockUserStore) ListAll(ctx context.Context) ([]model.User, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserStore) Update(ctx context.Context, id uint64, p repository.UserPatch, cost int) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, p, cost)
	}
	return nil
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, password, cost)
	}
	return nil
}

func (m *mockUserStore) DeleteByID(ctx context.Context, id uint64) error {
	if m.deleteByIDFunc != nil {
		return m.deleteByIDFunc(ctx, id)
	}
	return nil
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUserUpdate(t *testing.T) {
	var gotID uint64
	var gotPatch repository.UserPatch
	store := &mockUserStore{
		updateFunc: func(_ context.Context, id uint64, p repository.UserPatch, _ int) error {
			gotID, gotPatch = id, p
			return nil
		},
		getByIDFunc: func(_ context.Context, id uint64) (model.User, error) {
			return model.User{ID: id, Name: "Bob", Role: model.RoleAdmin}, nil
		},
	}
	h := NewUserHandler(store, bcrypt.MinCost)

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/users/9", `{"name":"Bob","role":"admin"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != 9 {
		t.Fatalf("store got id %d, want 9", gotID)
	}
	if gotPatch.Name == nil || *gotPatch.Name != "Bob" {
		t.Fatalf("patch name = %v, want Bob", gotPatch.Name)
	}
	// Role is normalized to upper case before it reaches the store.
	if gotPatch.Role == nil || *gotPatch.Role != model.RoleAdmin {
		t.Fatalf("patch role = %v, want %s", gotPatch.Role, model.RoleAdmin)
	}
	if gotPatch.Age != nil || gotPatch.Username != nil || gotPatch.Email != nil || gotPatch.Password != nil {
		t.Fatalf("unset fields must stay nil: %+v", gotPatch)
	}

	var resp struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Name != "Bob" || resp.Role != model.RoleAdmin {
		t.Fatalf("response = %+v", resp)
	}
}

func TestUserUpdateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty patch", repository.ErrNoChange, http.StatusBadRequest},
		{"unknown user", repository.ErrUserNotFound, http.StatusNotFound},
		{"username clash", repository.ErrUsernameExists, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockUserStore{
				updateFunc: func(context.Context, uint64, repository.UserPatch, int) error {
					return tt.err
				},
			}
			h := NewUserHandler(store, bcrypt.MinCost)

			c, rec := newJSONContext(t, http.MethodPatch, "/v1/users/9", `{"name":"Bob"}`)
			c.SetParamNames("id")
			c.SetParamValues("9")
			if err := h.Update(c); err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func newChangePasswordContext(t *testing.T, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newJSONContext(t, http.MethodPatch, "/v1/auth/change-password", body)
	if userID > 0 {
		c.Set(middleware.CtxUserID, userID)
	}
	return c, rec
}

func TestChangePassword(t *testing.T) {
	oldHash, err := utils.HashPassword("old-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	var gotID uint64
	var gotNew string
	store := &mockUserStore{
		getByIDFunc: func(_ context.Context, id uint64) (model.User, error) {
			return model.User{ID: id, PasswordHash: oldHash}, nil
		},
		updatePasswordFunc: func(_ context.Context, id uint64, password string, _ int) error {
			gotID, gotNew = id, password
			return nil
		},
	}
	h := &AuthHandler{Cfg: config.Config{BcryptCost: bcrypt.MinCost}, Users: store}

	c, rec := newChangePasswordContext(t, `{"password":"old-password","new_password":"new-password"}`, 7)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != 7 || gotNew != "new-password" {
		t.Fatalf("store got (%d, %q), want (7, new-password)", gotID, gotNew)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	oldHash, err := utils.HashPassword("old-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	updated := false
	store := &mockUserStore{
		getByIDFunc: func(_ context.Context, id uint64) (model.User, error) {
			return model.User{ID: id, PasswordHash: oldHash}, nil
		},
		updatePasswordFunc: func(context.Context, uint64, string, int) error {
			updated = true
			return nil
		},
	}
	h := &AuthHandler{Cfg: config.Config{BcryptCost: bcrypt.MinCost}, Users: store}

	c, rec := newChangePasswordContext(t, `{"password":"guess","new_password":"new-password"}`, 7)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if updated {
		t.Fatal("password must not change when the current one is wrong")
	}
}

func TestChangePasswordRequiresAuth(t *testing.T) {
	h := &AuthHandler{Users: &mockUserStore{}}

	c, rec := newChangePasswordContext(t, `{"password":"x","new_password":"new-password"}`, 0)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestChangePasswordRejectsShortNew(t *testing.T) {
	h := &AuthHandler{Users: &mockUserStore{}}

	c, _ := newChangePasswordContext(t, `{"password":"old-password","new_password":"short"}`, 7)
	err := h.ChangePassword(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
