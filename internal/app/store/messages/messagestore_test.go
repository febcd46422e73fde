package messagestore_test

import (
	"testing"

	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Study", "CS", "alice")

	first, err := store.Create(ctx, models.Message{GroupID: g.ID, Sender: "alice", Content: "one"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.ID == primitive.NilObjectID || first.CreatedAt.IsZero() {
		t.Errorf("expected ID and CreatedAt to be set: %+v", first)
	}
	if _, err := store.Create(ctx, models.Message{GroupID: g.ID, Sender: "alice", Content: "two"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	fixtures.CreateMessage(ctx, primitive.NewObjectID(), "eve", "elsewhere", nil)

	msgs, err := store.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "one" || msgs[1].Content != "two" {
		t.Errorf("ListByGroup = %+v", msgs)
	}
}

func TestStore_ListAttachments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Study", "CS", "alice")
	fixtures.CreateMessage(ctx, g.ID, "alice", "text only", nil)
	fixtures.CreateMessage(ctx, g.ID, "alice", "", &models.Attachment{Path: "chat/a.pdf", Name: "a.pdf"})
	fixtures.CreateMessage(ctx, g.ID, "alice", "", &models.Attachment{Path: "", Name: "broken"})

	atts, err := store.ListAttachments(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListAttachments failed: %v", err)
	}
	if len(atts) != 1 || atts[0].Path != "chat/a.pdf" {
		t.Errorf("ListAttachments = %+v, want chat/a.pdf only", atts)
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Study", "CS", "alice")
	other := fixtures.CreateGroup(ctx, "Other", "CS", "bob")
	fixtures.CreateMessage(ctx, g.ID, "alice", "a", nil)
	fixtures.CreateMessage(ctx, g.ID, "alice", "b", nil)
	fixtures.CreateMessage(ctx, other.ID, "bob", "c", nil)

	n, err := store.DeleteByGroup(ctx, g.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByGroup = %d, %v; want 2", n, err)
	}
	if c := fixtures.Count(ctx, "messages", bson.M{"group_id": g.ID}); c != 0 {
		t.Errorf("%d messages left after delete", c)
	}
	if c := fixtures.Count(ctx, "messages", bson.M{"group_id": other.ID}); c != 1 {
		t.Errorf("other group count = %d, want 1", c)
	}
}

func TestStore_CreateKeepsPresetID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Study", "CS", "alice")
	id := primitive.NewObjectID()

	m, err := store.Create(ctx, models.Message{ID: id, GroupID: g.ID, Sender: "alice", Content: "x"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID != id {
		t.Errorf("ID = %s, want preset %s", m.ID.Hex(), id.Hex())
	}
}

func TestStore_GetInGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := messagestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Study", "CS", "alice")
	other := fixtures.CreateGroup(ctx, "Other", "CS", "bob")
	m := fixtures.CreateMessage(ctx, g.ID, "alice", "", &models.Attachment{Path: "chat/a.pdf", Name: "a.pdf"})

	got, err := store.GetInGroup(ctx, g.ID, m.ID)
	if err != nil {
		t.Fatalf("GetInGroup failed: %v", err)
	}
	if got.File == nil || got.File.Path != "chat/a.pdf" {
		t.Errorf("GetInGroup = %+v", got)
	}

	if _, err := store.GetInGroup(ctx, other.ID, m.ID); err != mongo.ErrNoDocuments {
		t.Errorf("wrong group: err = %v, want ErrNoDocuments", err)
	}
}
