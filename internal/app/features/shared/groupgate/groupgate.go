// Package groupgate resolves the group behind /groups/{id}/... pages and
// turns lifecycle errors into the matching response.
package groupgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const notFoundMsg = "That study group does not exist or has expired."

// Gate bundles what member-only pages need to reject a request.
type Gate struct {
	Svc    *lifecycle.Service
	Flash  *flash.Flasher
	ErrLog *uierrors.ErrorLogger
}

func New(svc *lifecycle.Service, fl *flash.Flasher, errLog *uierrors.ErrorLogger) *Gate {
	return &Gate{Svc: svc, Flash: fl, ErrLog: errLog}
}

// ObjectID parses the named URL param. A malformed id renders the not
// found page.
func (g *Gate) ObjectID(w http.ResponseWriter, r *http.Request, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		uierrors.RenderNotFound(w, r, notFoundMsg, "/groups")
		return primitive.NilObjectID, false
	}
	return id, true
}

// Member resolves {id} for a roster member of the group. Unknown and
// expired groups get a 404. Signed-in non-members are sent back to the
// group list with a notice naming area ("chat", "tasks").
func (g *Gate) Member(w http.ResponseWriter, r *http.Request, area string) (models.Group, bool) {
	id, ok := g.ObjectID(w, r, "id")
	if !ok {
		return models.Group{}, false
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	grp, err := g.Svc.MemberGroup(ctx, identity, id)
	if errors.Is(err, lifecycle.ErrForbidden) {
		g.Reject(w, r, id, area)
		return models.Group{}, false
	}
	if err != nil {
		g.Fail(w, r, err, "load group", "/groups")
		return models.Group{}, false
	}
	return grp, true
}

// Reject queues the non-member notice and redirects to the group list.
func (g *Gate) Reject(w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, area string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	msg := "You must be a member of this group to access its " + area + "."
	if grp, err := g.Svc.Group(ctx, groupID); err == nil {
		msg = fmt.Sprintf("You must be a member of %q to access its %s.", grp.Name, area)
	}
	g.Flash.Add(w, r, flash.Danger, msg)
	http.Redirect(w, r, "/groups", http.StatusSeeOther)
}

// Fail renders err: 404 for ErrNotFound, the forbidden page for
// ErrForbidden, and a logged 500 for anything else.
func (g *Gate) Fail(w http.ResponseWriter, r *http.Request, err error, op, backURL string) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, notFoundMsg, "/groups")
	case errors.Is(err, lifecycle.ErrForbidden):
		uierrors.RenderForbidden(w, r, "You don't have permission to do that.", backURL)
	default:
		g.ErrLog.LogServerError(w, r, op+" failed", err, "A database error occurred.", backURL)
	}
}
