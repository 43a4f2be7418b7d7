package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/memegen-client/internal/domain"
)

func openTestBolt(t *testing.T, opts Options) *boltStore {
	t.Helper()
	raw, err := openBolt(filepath.Join(t.TempDir(), "nested", "history.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := raw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsAndLooksUp(t *testing.T) {
	store := openTestBolt(t, Options{RecordTTL: time.Hour, CleanupInterval: time.Hour})

	if _, found, err := store.Lookup("img-1"); err != nil || found {
		t.Fatalf("expected missing record, found=%v err=%v", found, err)
	}

	rec := domain.RenderRecord{ImageID: "img-1", Operation: "render", MemeKey: "petpet", Sources: []string{"src"}}
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, found, err := store.Lookup("img-1")
	if err != nil || !found {
		t.Fatalf("Lookup found=%v err=%v", found, err)
	}
	if got.MemeKey != "petpet" || got.Operation != "render" || len(got.Sources) != 1 {
		t.Fatalf("unexpected record %#v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be filled in")
	}
}

func TestBoltStoreRejectsEmptyID(t *testing.T) {
	store := openTestBolt(t, Options{})
	if err := store.Record(domain.RenderRecord{Operation: "render"}); err == nil {
		t.Fatalf("expected error for empty image id")
	}
}

func TestBoltStoreRecentNewestFirst(t *testing.T) {
	store := openTestBolt(t, Options{RecordTTL: time.Hour, CleanupInterval: time.Hour})
	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		rec := domain.RenderRecord{ImageID: id, Operation: "render", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Record(rec); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ImageID != "c" || recent[1].ImageID != "b" {
		t.Fatalf("unexpected order %#v", recent)
	}

	all, err := store.Recent(0)
	if err != nil || len(all) != 3 {
		t.Fatalf("Recent(0) = %d records, err=%v", len(all), err)
	}
}

func TestBoltStoreExpiresRecords(t *testing.T) {
	store := openTestBolt(t, Options{RecordTTL: time.Minute, CleanupInterval: time.Minute})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.Record(domain.RenderRecord{ImageID: "old", Operation: "render"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	clock = clock.Add(2 * time.Minute)

	if recent, err := store.Recent(0); err != nil || len(recent) != 0 {
		t.Fatalf("expected expired record hidden, got %#v err=%v", recent, err)
	}
	if _, found, err := store.Lookup("old"); err != nil || found {
		t.Fatalf("expected expired record removed, found=%v err=%v", found, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.RenderRecord{ImageID: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if recent, _ := store.Recent(5); recent != nil {
		t.Fatalf("noop store should return nothing")
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
