package groups

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeGroupsList handles GET /groups. Expired groups are swept first and
// the page reports what was removed. A sweep failure is logged and the
// list still renders, since expired groups are filtered at read time.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.Identity(r)
	subject := trimSubject(query.Get(r, "subject"))

	sweepCtx, sweepCancel := context.WithTimeout(r.Context(), timeouts.Medium())
	res, err := h.Svc.Sweep(sweepCtx)
	sweepCancel()
	if err != nil {
		h.Log.Warn("sweep on list failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	groups, err := h.Svc.ListGroups(ctx, subject)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.", "/")
		return
	}

	data := listData{
		BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "Study groups", "/"),
		Subject:  subject,
		Subjects: filterSubjects(),
		Groups:   make([]groupRow, 0, len(groups)),
	}
	for _, g := range groups {
		data.Groups = append(data.Groups, toRow(g, identity))
	}
	if res.Groups > 0 {
		data.Notices = append(data.Notices, flash.Notice{Level: flash.Info, Message: sweepNotice(res)})
	}

	templates.Render(w, r, "groups_list", data)
}

func sweepNotice(res lifecycle.SweepResult) string {
	msg := fmt.Sprintf("%d expired %s removed", res.Groups, plural(res.Groups, "group", "groups"))
	if res.Files > 0 {
		msg += fmt.Sprintf(" (%d %s deleted)", res.Files, plural(res.Files, "file", "files"))
	}
	return msg + "."
}
