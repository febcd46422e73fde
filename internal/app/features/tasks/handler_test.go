package tasks_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/tasks"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h     *tasks.Handler
	fx    *testutil.Fixtures
	fl    *flash.Flasher
	ctx   context.Context
	group models.Group
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	logger := zap.NewNop()
	fl := testutil.NewFlasher()
	svc := lifecycle.New(db, testutil.NewFakeFiles(), logger)
	fx := testutil.NewFixtures(t, db)
	return env{
		h:     tasks.NewHandler(svc, fl, uierrors.NewErrorLogger(logger), logger),
		fx:    fx,
		fl:    fl,
		ctx:   ctx,
		group: fx.CreateGroup(ctx, "Calc", "Math", "alice", "bob", "carol"),
	}
}

func (e env) tasksURL() string { return "/groups/" + e.group.ID.Hex() + "/tasks" }

func (e env) serve(fn http.HandlerFunc, req *http.Request, taskID string) *testutil.ResponseRecorder {
	req = testutil.WithChiURLParam(req, "id", e.group.ID.Hex())
	if taskID != "" {
		req = testutil.WithChiURLParam(req, "taskID", taskID)
	}
	return testutil.Serve(fn, req)
}

func TestHandleCreate(t *testing.T) {
	e := setup(t)

	form := url.Values{"title": {"Read ch. 3"}, "assignee": {"bob"}}
	rec := e.serve(e.h.HandleCreate, testutil.NewFormRequest(e.tasksURL(), form, "alice"), "")

	rec.AssertRedirect(t, e.tasksURL())
	var task models.Task
	if err := e.fx.DB().Collection("tasks").FindOne(e.ctx, bson.M{"group_id": e.group.ID}).Decode(&task); err != nil {
		t.Fatalf("task not stored: %v", err)
	}
	if task.Creator != "alice" || task.Assignee == nil || *task.Assignee != "bob" || task.Completed {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"blank title", url.Values{"title": {"  "}}},
		{"assignee not a member", url.Values{"title": {"Read"}, "assignee": {"mallory"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.serve(e.h.HandleCreate, testutil.NewFormRequest(e.tasksURL(), tt.form, "alice"), "")
			rec.AssertStatus(t, http.StatusUnprocessableEntity)
		})
	}
	if n := e.fx.Count(e.ctx, "tasks", bson.M{}); n != 0 {
		t.Errorf("invalid tasks stored: %d", n)
	}
}

func TestHandleCreate_NonMember(t *testing.T) {
	e := setup(t)

	form := url.Values{"title": {"Sneaky"}}
	rec := e.serve(e.h.HandleCreate, testutil.NewFormRequest(e.tasksURL(), form, "mallory"), "")

	rec.AssertRedirect(t, "/groups")
	if n := e.fx.Count(e.ctx, "tasks", bson.M{}); n != 0 {
		t.Errorf("non-member created %d tasks", n)
	}
}

func TestHandleToggle(t *testing.T) {
	e := setup(t)
	task := e.fx.CreateTask(e.ctx, e.group.ID, "Read", "alice", "")
	id := task.ID.Hex()

	for _, want := range []bool{true, false} {
		rec := e.serve(e.h.HandleToggle, testutil.NewAuthenticatedRequest("POST", e.tasksURL()+"/"+id+"/toggle", "carol"), id)
		rec.AssertRedirect(t, e.tasksURL())

		var got models.Task
		if err := e.fx.DB().Collection("tasks").FindOne(e.ctx, bson.M{"_id": task.ID}).Decode(&got); err != nil {
			t.Fatalf("load task: %v", err)
		}
		if got.Completed != want {
			t.Errorf("completed = %v, want %v", got.Completed, want)
		}
	}
}

func TestHandleToggle_UnknownTask(t *testing.T) {
	e := setup(t)
	id := primitive.NewObjectID().Hex()

	rec := e.serve(e.h.HandleToggle, testutil.NewAuthenticatedRequest("POST", e.tasksURL()+"/"+id+"/toggle", "alice"), id)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete(t *testing.T) {
	e := setup(t)
	task := e.fx.CreateTask(e.ctx, e.group.ID, "Read", "alice", "bob")
	id := task.ID.Hex()
	path := e.tasksURL() + "/" + id + "/delete"

	// carol is a member but neither creator nor assignee.
	rec := e.serve(e.h.HandleDelete, testutil.NewAuthenticatedRequest("POST", path, "carol"), id)
	rec.AssertRedirect(t, e.tasksURL())
	if notices := testutil.Notices(e.fl, rec); len(notices) != 1 || notices[0].Level != flash.Danger {
		t.Errorf("expected a rejection notice, got %v", notices)
	}
	if n := e.fx.Count(e.ctx, "tasks", bson.M{"_id": task.ID}); n != 1 {
		t.Fatal("task deleted by a member without rights")
	}

	// The assignee may delete.
	rec = e.serve(e.h.HandleDelete, testutil.NewAuthenticatedRequest("POST", path, "bob"), id)
	rec.AssertRedirect(t, e.tasksURL())
	if n := e.fx.Count(e.ctx, "tasks", bson.M{"_id": task.ID}); n != 0 {
		t.Error("assignee delete did not remove the task")
	}
}

func TestServeTasks_Gate(t *testing.T) {
	e := setup(t)

	e.serve(e.h.ServeTasks, testutil.NewAuthenticatedRequest("GET", e.tasksURL(), "bob"), "").AssertStatus(t, http.StatusOK)
	e.serve(e.h.ServeTasks, testutil.NewAuthenticatedRequest("GET", e.tasksURL(), "mallory"), "").AssertRedirect(t, "/groups")
}
