package groups

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
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeEditGroup renders the edit form. Creator only.
func (h *Handler) ServeEditGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Gate.ObjectID(w, r, "id")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Svc.ManagedGroup(ctx, identity, id)
	if err != nil {
		h.failManage(w, r, err, "load group for edit")
		return
	}

	templates.Render(w, r, "group_form", groupFormData{
		BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "Edit "+g.Name, "/groups"),
		IsEdit:   true,
		GroupID:  g.ID.Hex(),
		Action:   groupURL(g.ID.Hex(), "/edit"),
		Subjects: formSubjects(),
		Input:    inputFromGroup(g),
	})
}

// HandleEditGroup saves the edit form. Creator only; last write wins.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Gate.ObjectID(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/groups")
		return
	}
	identity, _ := auth.Identity(r)
	in := readGroupInput(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Svc.EditGroup(ctx, identity, id, in)
	if ve, ok := lifecycle.IsValidation(err); ok {
		h.renderFormError(w, r, groupFormData{
			BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "Edit study group", "/groups"),
			IsEdit:   true,
			GroupID:  id.Hex(),
			Action:   groupURL(id.Hex(), "/edit"),
			Subjects: formSubjects(),
			Input:    in,
		}, ve)
		return
	}
	if err != nil {
		h.failManage(w, r, err, "edit group")
		return
	}

	h.Log.Info("group updated", zap.String("group_id", g.ID.Hex()), zap.String("by", identity))
	h.notice(w, r, flash.Success, fmt.Sprintf("Study group %q has been updated!", g.Name))
}

// failManage maps errors from creator-only operations.
func (h *Handler) failManage(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, lifecycle.ErrForbidden) {
		uierrors.RenderForbidden(w, r, "Only the group creator can do that.", "/groups")
		return
	}
	h.Gate.Fail(w, r, err, op, "/groups")
}
