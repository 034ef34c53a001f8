package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/utils"
)

const testSecret = "test-secret"

func TestUserIDSeesAuthenticatedUser(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 42, "PLAYER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got string
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		got = userID(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "42" {
		t.Fatalf("userID() = %q, want %q", got, "42")
	}
}

func TestUserIDDefaultsToGuest(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if got := userID(c); got != "guest" {
		t.Fatalf("userID() = %q, want %q", got, "guest")
	}
}
