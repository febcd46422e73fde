// internal/app/features/groups/handler.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/shared/groupgate"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature:
// the list with its lazy sweep, the create/edit/delete forms, and
// join/leave.
type Handler struct {
	Svc    *lifecycle.Service
	Gate   *groupgate.Gate
	Flash  *flash.Flasher
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler is called from bootstrap once the service and the cookie
// stores exist.
func NewHandler(svc *lifecycle.Service, fl *flash.Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Gate:   groupgate.New(svc, fl, errLog),
		Flash:  fl,
		ErrLog: errLog,
		Log:    logger,
	}
}

func groupURL(id, suffix string) string {
	return "/groups/" + id + suffix
}

// notice queues msg for the next page and redirects to the group list.
func (h *Handler) notice(w http.ResponseWriter, r *http.Request, level, msg string) {
	h.Flash.Add(w, r, level, msg)
	http.Redirect(w, r, "/groups", http.StatusSeeOther)
}
