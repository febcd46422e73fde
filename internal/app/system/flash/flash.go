// Package flash carries one-shot status notices across a redirect
// (e.g. "bob successfully joined ..."), stored in a signed cookie that shares
// the session store's keys.
package flash

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

// Levels used by templates to pick a banner style.
const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Danger  = "danger"
)

// Notice is a single status message.
type Notice struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Notice{})
}

// Flasher reads and writes notices for one cookie name.
type Flasher struct {
	store sessions.Store
	name  string
}

// New returns a Flasher storing notices in cookie "<sessionName>-flash".
func New(store sessions.Store, sessionName string) *Flasher {
	return &Flasher{store: store, name: sessionName + "-flash"}
}

// Add queues a notice for the next rendered page. Errors are ignored: a lost
// notice never blocks the action that produced it.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, level, msg string) {
	if f == nil {
		return
	}
	sess, _ := f.store.Get(r, f.name)
	sess.AddFlash(Notice{Level: level, Message: msg})
	_ = sess.Save(r, w)
}

// Pop returns and clears all queued notices.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	if f == nil {
		return nil
	}
	sess, err := f.store.Get(r, f.name)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	out := make([]Notice, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(Notice); ok {
			out = append(out, n)
		}
	}
	return out
}
