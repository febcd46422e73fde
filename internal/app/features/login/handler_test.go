package login_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/login"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return login.NewHandler(db, sm, nil, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "alice", "correct-horse")

	form := url.Values{"username": {"alice"}, "password": {"correct-horse"}, "return": {"/groups/abc/chat"}}
	rec := testutil.Serve(http.HandlerFunc(h.HandleLoginPost), testutil.NewFormRequest("/login", form, ""))

	rec.AssertRedirect(t, "/groups/abc/chat")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "alice", "correct-horse")

	form := url.Values{"username": {"alice"}, "password": {"nope"}}
	rec := testutil.Serve(http.HandlerFunc(h.HandleLoginPost), testutil.NewFormRequest("/login", form, ""))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no session cookie should be set on failure")
	}
}

func TestHandleLoginPost_UnknownUser(t *testing.T) {
	h, _ := newTestHandler(t)

	form := url.Values{"username": {"ghost"}, "password": {"whatever"}}
	rec := testutil.Serve(http.HandlerFunc(h.HandleLoginPost), testutil.NewFormRequest("/login", form, ""))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestHandleLoginPost_OffsiteReturnIgnored(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateUser(ctx, "alice", "correct-horse")

	for _, ret := range []string{"https://evil.example", "//evil.example", ""} {
		form := url.Values{"username": {"alice"}, "password": {"correct-horse"}, "return": {ret}}
		rec := testutil.Serve(http.HandlerFunc(h.HandleLoginPost), testutil.NewFormRequest("/login", form, ""))
		rec.AssertRedirect(t, "/groups")
	}
}
