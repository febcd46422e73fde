package lifecycle_test

import (
	"context"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	svc   *lifecycle.Service
	fx    *testutil.Fixtures
	files *testutil.FakeFiles
	ctx   context.Context
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	files := testutil.NewFakeFiles()
	return env{
		svc:   lifecycle.New(db, files, zap.NewNop()),
		fx:    testutil.NewFixtures(t, db),
		files: files,
		ctx:   ctx,
	}
}

func strPtr(s string) *string { return &s }
