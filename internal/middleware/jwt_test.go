package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler chain returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, c := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if uid, ok := c.Get(CtxUserID).(uint64); !ok || uid != 42 {
		t.Fatalf("user_id = %v, want 42", c.Get(CtxUserID))
	}
	if role, ok := c.Get(CtxRole).(string); !ok || role != "CUSTOMER" {
		t.Fatalf("role = %v, want CUSTOMER", c.Get(CtxRole))
	}
}

func TestJWTAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runProtected(t, tt.header, JWTAuth(testSecret))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		code    int
	}{
		{"admin allowed", "ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"customer allowed among several", "CUSTOMER", []string{"CUSTOMER", "ADMIN"}, http.StatusOK},
		{"customer blocked from admin route", "CUSTOMER", []string{"ADMIN"}, http.StatusForbidden},
		{"unknown role blocked", "OWNER", []string{"CUSTOMER", "ADMIN"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := utils.NewAccessToken(testSecret, 1, tt.role, 5)
			if err != nil {
				t.Fatalf("issue token: %v", err)
			}
			rec, _ := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole(tt.allowed...))
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	rec, _ := runProtected(t, "", RequireRole("ADMIN"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
