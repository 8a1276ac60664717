package state

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadHealth(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveHealth(map[string]bool{"headlines": true, "forum": false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	health, err := store.LoadHealth()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !health["headlines"] || health["forum"] {
		t.Errorf("unexpected health: %v", health)
	}
}

func TestSaveHealthUpserts(t *testing.T) {
	store := openTestStore(t)

	store.SaveHealth(map[string]bool{"feeds": true})
	store.SaveHealth(map[string]bool{"feeds": false})

	health, err := store.LoadHealth()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health["feeds"] {
		t.Error("expected the later flag to win")
	}
}

func TestSaveHealthKeepsAbsentSources(t *testing.T) {
	store := openTestStore(t)

	store.SaveHealth(map[string]bool{"videos": true})
	store.SaveHealth(map[string]bool{"forum": false})

	health, _ := store.LoadHealth()
	if !health["videos"] {
		t.Error("a source absent from the update should keep its stored flag")
	}
}

func TestRecordAndListCycles(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordCycle("", "general", 42, false, 800*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.RecordCycle("quantum", "general", 3, false, 200*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.RecordCycle("", "sports", 0, true, 100*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cycles, err := store.RecentCycles(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	if !cycles[0].Fallback || cycles[0].Category != "sports" {
		t.Errorf("expected newest cycle first, got %+v", cycles[0])
	}
	if cycles[1].Query != "quantum" || cycles[1].ItemCount != 3 {
		t.Errorf("unexpected cycle: %+v", cycles[1])
	}
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)

	store.RecordCycle("", "general", 10, false, time.Second)
	store.RecordCycle("", "general", 0, true, time.Second)

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCycles != 2 {
		t.Errorf("expected 2 cycles, got %d", stats.TotalCycles)
	}
	if stats.FallbackCycles != 1 {
		t.Errorf("expected 1 fallback cycle, got %d", stats.FallbackCycles)
	}
	if stats.LastCycleAt == "" {
		t.Error("expected a last-cycle timestamp")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	store.SaveHealth(map[string]bool{"headlines": true})
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("re-open failed: %v", err)
	}
	defer store.Close()

	health, _ := store.LoadHealth()
	if !health["headlines"] {
		t.Error("expected health to survive a re-open")
	}
}
