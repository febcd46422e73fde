package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/features/logout"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

func TestHandleLogout_RedirectsHome(t *testing.T) {
	sm := newSessionManager(t)
	h := logout.NewHandler(sm, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, testutil.NewAuthenticatedRequest("POST", "/logout", "alice"))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleLogout_HTMX(t *testing.T) {
	sm := newSessionManager(t)
	h := logout.NewHandler(sm, zap.NewNop())

	req := testutil.NewAuthenticatedRequest("POST", "/logout", "alice")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("expected HX-Redirect /, got %q", hx)
	}
}

func TestRoutes_GetNotAllowed(t *testing.T) {
	sm := newSessionManager(t)
	router := logout.Routes(logout.NewHandler(sm, zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", "alice"))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET /logout, got %d", rec.Code)
	}
}
