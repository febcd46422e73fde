package groups

import (
	"context"
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

// ServeNewGroup renders the Add Group page.
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "group_form", groupFormData{
		BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "New study group", "/groups"),
		Action:   "/groups",
		Subjects: formSubjects(),
	})
}

// HandleCreateGroup processes the Add Group form submission. The signed-in
// user becomes the creator and first member.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/groups/new")
		return
	}
	identity, _ := auth.Identity(r)
	in := readGroupInput(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Svc.CreateGroup(ctx, identity, in)
	if ve, ok := lifecycle.IsValidation(err); ok {
		h.renderFormError(w, r, groupFormData{
			BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "New study group", "/groups"),
			Action:   "/groups",
			Subjects: formSubjects(),
			Input:    in,
		}, ve)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err, "A database error occurred.", "/groups")
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("creator", identity))
	h.notice(w, r, flash.Success, fmt.Sprintf("Study group %q has been created!", g.Name))
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, data groupFormData, ve *lifecycle.ValidationError) {
	data.Error = ve.Message
	data.Field = ve.Field
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "group_form", data)
}
