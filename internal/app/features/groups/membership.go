package groups

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleJoin adds the signed-in user to the roster.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.Svc.Join)
}

// HandleLeave removes the signed-in user from the roster.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.Svc.Leave)
}

type membershipOp func(context.Context, string, primitive.ObjectID) (lifecycle.MembershipResult, error)

func (h *Handler) changeMembership(w http.ResponseWriter, r *http.Request, op membershipOp) {
	id, ok := h.Gate.ObjectID(w, r, "id")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Svc.Group(ctx, id)
	if err != nil {
		h.Gate.Fail(w, r, err, "load group", "/groups")
		return
	}

	res, err := op(ctx, identity, id)
	if err != nil {
		h.Gate.Fail(w, r, err, "change membership", "/groups")
		return
	}

	h.Log.Info("membership changed",
		zap.String("group_id", id.Hex()),
		zap.String("user", identity),
		zap.Stringer("result", res))

	switch res {
	case lifecycle.Joined:
		h.notice(w, r, flash.Success, fmt.Sprintf("%s successfully joined %q!", identity, g.Name))
	case lifecycle.AlreadyMember:
		h.notice(w, r, flash.Warning, fmt.Sprintf("%s is already a member of %q!", identity, g.Name))
	case lifecycle.Left:
		h.notice(w, r, flash.Info, fmt.Sprintf("%s has left %q.", identity, g.Name))
	case lifecycle.NotMember:
		h.notice(w, r, flash.Danger, fmt.Sprintf("%s is not a member of %q!", identity, g.Name))
	}
}
