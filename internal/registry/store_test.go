package registry_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"mcmovie/internal/pack"
	"mcmovie/internal/registry"
	"mcmovie/internal/services"
	"mcmovie/internal/testsupport"
)

func TestReserveNewName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)

	id, existed, err := store.Reserve(context.Background(), "Trailer", false)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if existed {
		t.Fatal("expected unknown name")
	}
	if id.Version != (pack.Version{0, 0, 1}) || id.HeaderUUID == "" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestReserveBumpsKnownName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	ctx := context.Background()

	first, _, err := store.Reserve(ctx, "Trailer", false)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := store.Record(ctx, registry.Entry{Name: "Trailer", Identity: first, FrameCount: 10}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second, existed, err := store.Reserve(ctx, "Trailer", false)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !existed {
		t.Fatal("expected known name")
	}
	if second.HeaderUUID != first.HeaderUUID || second.ModuleUUID != first.ModuleUUID {
		t.Fatal("expected uuids to be reused")
	}
	if second.Version != (pack.Version{0, 0, 2}) {
		t.Fatalf("expected bumped version, got %v", second.Version)
	}

	fresh, existed, err := store.Reserve(ctx, "Trailer", true)
	if err != nil {
		t.Fatalf("Reserve fresh: %v", err)
	}
	if !existed || fresh.HeaderUUID == first.HeaderUUID {
		t.Fatalf("expected fresh identity for known name, got %+v", fresh)
	}
}

func TestRecordUpsertsAndCountsBuilds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	ctx := context.Background()

	id := pack.NewIdentity()
	early := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, registry.Entry{
		Name:          "Intro",
		Identity:      id,
		ArchivePath:   "/tmp/Intro.mcpack",
		ArchiveBytes:  1234,
		SourcePath:    "/videos/intro.mp4",
		SourceSeconds: 4.5,
		FrameCount:    10,
		RunID:         "run-1",
		BuiltAt:       early,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	later := early.Add(time.Hour)
	if err := store.Record(ctx, registry.Entry{Name: "Intro", Identity: id.Bump(), FrameCount: 45, Loop: true, BuiltAt: later}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, "Intro")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry")
	}
	if got.Builds != 2 || got.FrameCount != 45 || !got.Loop {
		t.Fatalf("unexpected entry after upsert: %+v", got)
	}
	if got.Identity.Version != (pack.Version{0, 0, 2}) {
		t.Fatalf("unexpected version %v", got.Identity.Version)
	}
	if !got.CreatedAt.Equal(early) || !got.BuiltAt.Equal(later) {
		t.Fatalf("unexpected timestamps created=%v built=%v", got.CreatedAt, got.BuiltAt)
	}
	if got.ArchivePath != "" {
		t.Fatalf("expected archive path cleared by latest record, got %q", got.ArchivePath)
	}
}

func TestListOrdersByBuildTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		if err := store.Record(ctx, registry.Entry{Name: name, Identity: pack.NewIdentity(), BuiltAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Record %s: %v", name, err)
		}
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "c" || entries[2].Name != "a" {
		t.Fatalf("unexpected order: %+v", entries)
	}
}

func TestGetUnknownAndForget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil entry, got %+v err=%v", got, err)
	}
	if err := store.Record(ctx, registry.Entry{Name: "x", Identity: pack.NewIdentity()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	removed, err := store.Forget(ctx, "x")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v err=%v", removed, err)
	}
	removed, err = store.Forget(ctx, "x")
	if err != nil || removed {
		t.Fatalf("expected no-op removal, got %v err=%v", removed, err)
	}
}

func TestRecordRequiresName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	if err := store.Record(context.Background(), registry.Entry{Name: "  "}); !errors.Is(err, services.ErrRegistry) {
		t.Fatalf("expected registry error, got %v", err)
	}
}

func TestCommitArchiveSetsSize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	ctx := context.Background()

	if err := store.CommitArchive(ctx, "Trailer", 512); !errors.Is(err, services.ErrRegistry) {
		t.Fatalf("expected registry error for unknown name, got %v", err)
	}

	if err := store.Record(ctx, registry.Entry{Name: "Trailer", Identity: pack.NewIdentity()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entry, err := store.Get(ctx, "Trailer")
	if err != nil || entry == nil {
		t.Fatalf("Get: %v %v", entry, err)
	}
	if entry.ArchiveBytes != 0 {
		t.Fatalf("expected uncommitted size 0, got %d", entry.ArchiveBytes)
	}

	if err := store.CommitArchive(ctx, "Trailer", 512); err != nil {
		t.Fatalf("CommitArchive: %v", err)
	}
	entry, err = store.Get(ctx, "Trailer")
	if err != nil || entry == nil {
		t.Fatalf("Get: %v %v", entry, err)
	}
	if entry.ArchiveBytes != 512 || entry.Builds != 1 {
		t.Fatalf("unexpected entry after commit: bytes=%d builds=%d", entry.ArchiveBytes, entry.Builds)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := registry.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), registry.Entry{Name: "keep", Identity: pack.NewIdentity()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = store.Close()

	reopened := testsupport.MustOpenRegistry(t, cfg)
	got, err := reopened.Get(context.Background(), "keep")
	if err != nil || got == nil {
		t.Fatalf("expected entry after reopen, got %+v err=%v", got, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRegistry(t, cfg)
	_ = store.Close()

	db, err := sql.Open("sqlite", cfg.RegistryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	_ = db.Close()

	if _, err := registry.Open(cfg); !errors.Is(err, registry.ErrSchemaMismatch) || !errors.Is(err, services.ErrRegistry) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
