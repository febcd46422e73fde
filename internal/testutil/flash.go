package testutil

import (
	"net/http/httptest"

	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/gorilla/sessions"
)

const testCookieKey = "test-flash-key-must-be-32-chars-long!"

// NewFlasher returns a Flasher backed by a throwaway cookie store.
func NewFlasher() *flash.Flasher {
	return flash.New(sessions.NewCookieStore([]byte(testCookieKey)), "test")
}

// Notices replays the cookies set on rec into a fresh request and pops
// the notices queued by the handler.
func Notices(fl *flash.Flasher, rec *ResponseRecorder) []flash.Notice {
	req := httptest.NewRequest("GET", "/groups", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return fl.Pop(httptest.NewRecorder(), req)
}
