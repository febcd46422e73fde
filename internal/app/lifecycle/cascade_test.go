package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func attachment(path string) *models.Attachment {
	return &models.Attachment{Path: path, Name: "notes.pdf", ContentType: "application/pdf"}
}

func TestCascadeDelete_RemovesEverything(t *testing.T) {
	e := setup(t)
	g := e.fx.CreateGroup(e.ctx, "CS101 Study", "CS", "alice", "bob")
	other := e.fx.CreateGroup(e.ctx, "Other group", "Math", "carol")

	e.fx.CreateMessage(e.ctx, g.ID, "alice", "hello", nil)
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/a.pdf"))
	e.fx.CreateMessage(e.ctx, g.ID, "bob", "slides", attachment("chat/b.pdf"))
	e.fx.CreateTask(e.ctx, g.ID, "Read ch. 1", "alice", "bob")
	e.fx.CreateMessage(e.ctx, other.ID, "carol", "keep me", attachment("chat/keep.pdf"))
	e.fx.CreateTask(e.ctx, other.ID, "Keep me", "carol", "")
	e.files.Seed([]byte("%PDF"), "chat/a.pdf", "chat/b.pdf", "chat/keep.pdf")

	removed, err := e.svc.CascadeDelete(e.ctx, g.ID)
	if err != nil {
		t.Fatalf("CascadeDelete failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("files removed = %d, want 2", removed)
	}

	deletes := e.files.Deletes()
	if len(deletes) != 2 {
		t.Errorf("delete attempts = %v, want both attachments", deletes)
	}
	for _, p := range deletes {
		if p == "chat/keep.pdf" {
			t.Error("attachment of another group was deleted")
		}
	}
	if e.files.Has("chat/a.pdf") || e.files.Has("chat/b.pdf") || !e.files.Has("chat/keep.pdf") {
		t.Errorf("unexpected stored files after cascade: %d left", e.files.Len())
	}

	if n := e.fx.Count(e.ctx, "messages", bson.M{"group_id": g.ID}); n != 0 {
		t.Errorf("%d messages still reference the group", n)
	}
	if n := e.fx.Count(e.ctx, "tasks", bson.M{"group_id": g.ID}); n != 0 {
		t.Errorf("%d tasks still reference the group", n)
	}
	if n := e.fx.Count(e.ctx, "groups", bson.M{"_id": g.ID}); n != 0 {
		t.Error("group record still present")
	}
	if n := e.fx.Count(e.ctx, "messages", bson.M{"group_id": other.ID}); n != 1 {
		t.Errorf("other group's messages = %d, want 1", n)
	}
	if n := e.fx.Count(e.ctx, "tasks", bson.M{"group_id": other.ID}); n != 1 {
		t.Errorf("other group's tasks = %d, want 1", n)
	}
}

func TestCascadeDelete_FileFailureIsBestEffort(t *testing.T) {
	e := setup(t)
	g := e.fx.CreateGroup(e.ctx, "CS101 Study", "CS", "alice")
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/ok.pdf"))
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/broken.pdf"))
	e.files.Seed([]byte("%PDF"), "chat/ok.pdf", "chat/broken.pdf")
	e.files.FailDelete("chat/broken.pdf")

	removed, err := e.svc.CascadeDelete(e.ctx, g.ID)
	if err != nil {
		t.Fatalf("file failure must not abort the cascade: %v", err)
	}
	if removed != 1 {
		t.Errorf("files removed = %d, want 1", removed)
	}
	if len(e.files.Deletes()) != 2 {
		t.Errorf("expected both deletions to be attempted, got %v", e.files.Deletes())
	}
	if n := e.fx.Count(e.ctx, "messages", bson.M{"group_id": g.ID}); n != 0 {
		t.Errorf("%d messages left behind", n)
	}
	if n := e.fx.Count(e.ctx, "groups", bson.M{"_id": g.ID}); n != 0 {
		t.Error("group record still present")
	}
}

func TestCascadeDelete_MissingFileIsNotCounted(t *testing.T) {
	e := setup(t)
	g := e.fx.CreateGroup(e.ctx, "CS101 Study", "CS", "alice")
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/present.pdf"))
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/gone.pdf"))
	e.files.Seed([]byte("%PDF"), "chat/present.pdf")

	removed, err := e.svc.CascadeDelete(e.ctx, g.ID)
	if err != nil {
		t.Fatalf("missing file must not abort the cascade: %v", err)
	}
	if removed != 1 {
		t.Errorf("files removed = %d, want 1", removed)
	}
	if n := e.fx.Count(e.ctx, "groups", bson.M{"_id": g.ID}); n != 0 {
		t.Error("group record still present")
	}
}

func TestCascadeDelete_GroupRemovedConcurrently(t *testing.T) {
	e := setup(t)
	g := e.fx.CreateGroup(e.ctx, "CS101 Study", "CS", "alice")
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/a.pdf"))
	e.files.Seed([]byte("%PDF"), "chat/a.pdf")

	// Another cascade finishes between our mark and our record delete.
	e.files.OnDelete(func(string) {
		if _, err := e.fx.DB().Collection("groups").DeleteOne(e.ctx, bson.M{"_id": g.ID}); err != nil {
			t.Errorf("concurrent delete failed: %v", err)
		}
	})

	removed, err := e.svc.CascadeDelete(e.ctx, g.ID)
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if removed != 1 {
		t.Errorf("files removed = %d, want 1", removed)
	}
}

func TestSweep_SkipsGroupRemovedConcurrently(t *testing.T) {
	e := setup(t)
	past := time.Now().UTC().Add(-time.Second)
	g := e.fx.CreateGroupExpiring(e.ctx, "Racing", "CS", "alice", &past)
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "", attachment("chat/r.pdf"))
	e.files.Seed([]byte("%PDF"), "chat/r.pdf")
	e.files.OnDelete(func(string) {
		_, _ = e.fx.DB().Collection("groups").DeleteOne(e.ctx, bson.M{"_id": g.ID})
	})

	res, err := e.svc.Sweep(e.ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if res.Groups != 0 {
		t.Errorf("Groups = %d, want 0 for a group another sweep removed", res.Groups)
	}
}

func TestCascadeDelete_UnknownGroup(t *testing.T) {
	e := setup(t)
	if _, err := e.svc.CascadeDelete(e.ctx, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSweep_RemovesExpiredGroups(t *testing.T) {
	e := setup(t)
	past := time.Now().UTC().Add(-time.Second)
	future := time.Now().UTC().Add(time.Hour)

	expired := e.fx.CreateGroupExpiring(e.ctx, "CS101 Study", "CS", "alice", &past)
	e.fx.CreateMessage(e.ctx, expired.ID, "alice", "", attachment("chat/x.pdf"))
	e.fx.CreateTask(e.ctx, expired.ID, "todo", "alice", "")
	e.files.Seed([]byte("%PDF"), "chat/x.pdf")
	live := e.fx.CreateGroupExpiring(e.ctx, "Later", "CS", "alice", &future)
	forever := e.fx.CreateGroup(e.ctx, "Forever", "CS", "alice")

	res, err := e.svc.Sweep(e.ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if res.Groups != 1 || res.Files != 1 {
		t.Errorf("Sweep = %+v, want {Groups:1 Files:1}", res)
	}

	gs, err := e.svc.ListGroups(e.ctx, "All")
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(gs) != 2 || gs[0].ID != forever.ID || gs[1].ID != live.ID {
		t.Errorf("unexpected listing after sweep: %+v", gs)
	}
	if n := e.fx.Count(e.ctx, "tasks", bson.M{"group_id": expired.ID}); n != 0 {
		t.Errorf("%d tasks of expired group remain", n)
	}

	again, err := e.svc.Sweep(e.ctx)
	if err != nil || again.Groups != 0 {
		t.Errorf("second sweep = %+v, %v; want nothing to do", again, err)
	}
}

func TestSweep_FinishesInterruptedDelete(t *testing.T) {
	e := setup(t)
	g := e.fx.CreateGroup(e.ctx, "Half gone", "CS", "alice")
	e.fx.CreateMessage(e.ctx, g.ID, "alice", "left over", nil)
	if _, err := e.fx.DB().Collection("groups").UpdateByID(e.ctx, g.ID, bson.M{"$set": bson.M{"pending_delete": true}}); err != nil {
		t.Fatalf("mark pending failed: %v", err)
	}

	res, err := e.svc.Sweep(e.ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if res.Groups != 1 {
		t.Errorf("Groups = %d, want 1", res.Groups)
	}
	if n := e.fx.Count(e.ctx, "messages", bson.M{"group_id": g.ID}); n != 0 {
		t.Errorf("%d orphaned messages remain", n)
	}
}

func TestSweep_UsesServiceClock(t *testing.T) {
	e := setup(t)
	at := time.Now().UTC().Add(24 * time.Hour)
	g := e.fx.CreateGroupExpiring(e.ctx, "Tomorrow", "CS", "alice", &at)

	res, err := e.svc.Sweep(e.ctx)
	if err != nil || res.Groups != 0 {
		t.Fatalf("early sweep = %+v, %v", res, err)
	}

	e.svc.Now = func() time.Time { return at }
	res, err = e.svc.Sweep(e.ctx)
	if err != nil || res.Groups != 1 {
		t.Fatalf("sweep at expiry = %+v, %v", res, err)
	}
	if n := e.fx.Count(e.ctx, "groups", bson.M{"_id": g.ID}); n != 0 {
		t.Error("group not removed at its expiration instant")
	}
}
