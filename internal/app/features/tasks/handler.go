// Package tasks serves a study group's shared to-do list. Any member may
// add and toggle tasks; only a task's creator or assignee may delete it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/shared/groupgate"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Svc    *lifecycle.Service
	Gate   *groupgate.Gate
	Flash  *flash.Flasher
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *lifecycle.Service, fl *flash.Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Gate:   groupgate.New(svc, fl, errLog),
		Flash:  fl,
		ErrLog: errLog,
		Log:    logger,
	}
}

type taskRow struct {
	ID          string
	Title       string
	Description string
	Assignee    string
	Creator     string
	Completed   bool
	CanDelete   bool
}

type tasksData struct {
	viewdata.BaseVM
	GroupID   string
	GroupName string
	Members   []string
	Tasks     []taskRow
	Error     string
	Input     lifecycle.TaskInput
}

// ServeTasks handles GET /groups/{id}/tasks.
func (h *Handler) ServeTasks(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "tasks")
	if !ok {
		return
	}
	h.render(w, r, g, http.StatusOK, "", lifecycle.TaskInput{})
}

// HandleCreate handles POST /groups/{id}/tasks.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "tasks")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", tasksURL(g))
		return
	}
	identity, _ := auth.Identity(r)
	in := lifecycle.TaskInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Assignee:    r.FormValue("assignee"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Svc.CreateTask(ctx, identity, g.ID, in)
	if ve, ok := lifecycle.IsValidation(err); ok {
		h.render(w, r, g, http.StatusUnprocessableEntity, ve.Message, in)
		return
	}
	if errors.Is(err, lifecycle.ErrForbidden) {
		h.Gate.Reject(w, r, g.ID, "tasks")
		return
	}
	if err != nil {
		h.Gate.Fail(w, r, err, "create task", tasksURL(g))
		return
	}

	h.Log.Debug("task created", zap.String("group_id", g.ID.Hex()), zap.String("task_id", t.ID.Hex()))
	http.Redirect(w, r, tasksURL(g), http.StatusSeeOther)
}

// HandleToggle handles POST /groups/{id}/tasks/{taskID}/toggle.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "tasks")
	if !ok {
		return
	}
	taskID, ok := h.Gate.ObjectID(w, r, "taskID")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Svc.ToggleTask(ctx, identity, g.ID, taskID); err != nil {
		if errors.Is(err, lifecycle.ErrForbidden) {
			h.Gate.Reject(w, r, g.ID, "tasks")
			return
		}
		h.Gate.Fail(w, r, err, "toggle task", tasksURL(g))
		return
	}
	http.Redirect(w, r, tasksURL(g), http.StatusSeeOther)
}

// HandleDelete handles POST /groups/{id}/tasks/{taskID}/delete. A member
// who is neither creator nor assignee is told so on the task page.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "tasks")
	if !ok {
		return
	}
	taskID, ok := h.Gate.ObjectID(w, r, "taskID")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Svc.DeleteTask(ctx, identity, g.ID, taskID)
	if errors.Is(err, lifecycle.ErrForbidden) {
		h.Flash.Add(w, r, flash.Danger, "Only the task's creator or assignee can delete it.")
		http.Redirect(w, r, tasksURL(g), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.Gate.Fail(w, r, err, "delete task", tasksURL(g))
		return
	}

	h.Log.Info("task deleted",
		zap.String("group_id", g.ID.Hex()),
		zap.String("task_id", taskID.Hex()),
		zap.String("by", identity))
	http.Redirect(w, r, tasksURL(g), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, g models.Group, status int, errMsg string, in lifecycle.TaskInput) {
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	current, list, err := h.Svc.ListTasks(ctx, identity, g.ID)
	if errors.Is(err, lifecycle.ErrForbidden) {
		h.Gate.Reject(w, r, g.ID, "tasks")
		return
	}
	if err != nil {
		h.Gate.Fail(w, r, err, "list tasks", "/groups")
		return
	}

	data := tasksData{
		BaseVM:    viewdata.NewBaseVM(w, r, h.Flash, fmt.Sprintf("%s · Tasks", current.Name), "/groups"),
		GroupID:   current.ID.Hex(),
		GroupName: current.Name,
		Members:   current.Members,
		Tasks:     make([]taskRow, 0, len(list)),
		Error:     errMsg,
		Input:     in,
	}
	for _, t := range list {
		data.Tasks = append(data.Tasks, toRow(t, identity))
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "tasks", data)
}

func toRow(t models.Task, identity string) taskRow {
	row := taskRow{
		ID:          t.ID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		Creator:     t.Creator,
		Completed:   t.Completed,
		CanDelete:   grouppolicy.CanDeleteTask(t, identity),
	}
	if t.Assignee != nil {
		row.Assignee = *t.Assignee
	}
	return row
}

func tasksURL(g models.Group) string {
	return "/groups/" + g.ID.Hex() + "/tasks"
}
