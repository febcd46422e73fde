package groups

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDeleteGroup removes the group with its chat, tasks and uploaded
// files. Creator only.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Gate.ObjectID(w, r, "id")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, err := h.Svc.ManagedGroup(ctx, identity, id)
	if err != nil {
		h.failManage(w, r, err, "load group for delete")
		return
	}
	files, err := h.Svc.DeleteGroup(ctx, identity, id)
	if err != nil {
		h.failManage(w, r, err, "delete group")
		return
	}

	h.Log.Info("group deleted",
		zap.String("group_id", id.Hex()),
		zap.String("by", identity),
		zap.Int("files_removed", files))
	h.notice(w, r, flash.Success, deleteNotice(g.Name, files))
}

func deleteNotice(name string, files int) string {
	msg := fmt.Sprintf("Study group %q has been deleted!", name)
	if files > 0 {
		msg += fmt.Sprintf(" %d %s removed.", files, plural(files, "file", "files"))
	}
	return msg
}
