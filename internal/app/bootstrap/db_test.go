package bootstrap

import (
	"testing"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"github.com/dalemusser/nearby/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func TestEnsureSchema_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Store:         docstore.NewMongo(db, docstore.BreakerConfig{}, zap.NewNop()),
	}
	core := &config.CoreConfig{}

	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, core, validConfig(), deps, zap.NewNop()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	names, err := deps.Store.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	want := map[string]bool{"events": false, "memberships": false, "messages": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("collection %q missing", n)
		}
	}
}
