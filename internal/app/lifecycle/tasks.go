package lifecycle

import (
	"context"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskInput is the raw new-task form. Assignee is a username or "".
type TaskInput struct {
	Title       string
	Description string
	Assignee    string
}

type taskForm struct {
	Title       string `validate:"notblank,max=200" label:"Title"`
	Description string `validate:"max=2000" label:"Description"`
}

// ListTasks returns open tasks first, then completed, each oldest first.
func (s *Service) ListTasks(ctx context.Context, identity string, groupID primitive.ObjectID) (models.Group, []models.Task, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Group{}, nil, err
	}
	tasks, err := s.tasks.ListByGroup(ctx, g.ID)
	if err != nil {
		return models.Group{}, nil, &StorageError{Op: "list tasks", Err: err}
	}
	return g, tasks, nil
}

// CreateTask adds a task. The assignee, if any, must be on the roster.
func (s *Service) CreateTask(ctx context.Context, identity string, groupID primitive.ObjectID, in TaskInput) (models.Task, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Task{}, err
	}

	form := taskForm{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		return models.Task{}, invalid(res.Errors[0].Field, res.First())
	}
	assignee := strings.TrimSpace(in.Assignee)
	if !grouppolicy.CanAssign(g, assignee) {
		return models.Task{}, invalid("Assignee", "Tasks can only be assigned to group members.")
	}

	t, err := s.tasks.Create(ctx, models.Task{
		GroupID:     g.ID,
		Title:       form.Title,
		Description: form.Description,
		Assignee:    optional(assignee),
		Creator:     identity,
	})
	if err != nil {
		return models.Task{}, &StorageError{Op: "create task", Err: err}
	}
	return t, nil
}

// ToggleTask flips the completed flag in one atomic update. Any member
// may toggle.
func (s *Service) ToggleTask(ctx context.Context, identity string, groupID, taskID primitive.ObjectID) (models.Task, error) {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return models.Task{}, err
	}
	t, err := s.tasks.Toggle(ctx, g.ID, taskID)
	if err != nil {
		return models.Task{}, storageErr("toggle task", err)
	}
	return t, nil
}

// DeleteTask removes a task. Only its creator or assignee may.
func (s *Service) DeleteTask(ctx context.Context, identity string, groupID, taskID primitive.ObjectID) error {
	g, err := s.MemberGroup(ctx, identity, groupID)
	if err != nil {
		return err
	}
	t, err := s.tasks.GetInGroup(ctx, g.ID, taskID)
	if err != nil {
		return storageErr("load task", err)
	}
	if !grouppolicy.CanDeleteTask(t, identity) {
		return ErrForbidden
	}
	n, err := s.tasks.Delete(ctx, g.ID, taskID)
	if err != nil {
		return &StorageError{Op: "delete task", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
