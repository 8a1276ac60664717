// Package aggregate owns the request lifecycle: fan-out to the source
// adapters, supersession of stale in-flight cycles, fold of results
// into source health, and the fallback policy.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/classify"
	"github.com/TobiSchelling/NewsDesk/internal/merge"
	"github.com/TobiSchelling/NewsDesk/internal/news"
	"github.com/TobiSchelling/NewsDesk/internal/sources"
	"github.com/TobiSchelling/NewsDesk/internal/state"
)

// Result is what one settled cycle hands back to the caller. Fetch
// never fails: total upstream failure shows up as the fallback item
// set plus all-false health, not as an error.
type Result struct {
	Items     []news.Item     `json:"items"`
	Health    map[string]bool `json:"sources"`
	Fallback  bool            `json:"fallback"`
	Query     string          `json:"query"`
	Category  string          `json:"category"`
	FetchedAt time.Time       `json:"fetchedAt"`
	LastLive  time.Time       `json:"lastLive,omitzero"`
}

// Aggregator runs one aggregation cycle at a time. A new Fetch call
// supersedes any cycle still in flight: the old generation's adapter
// calls are canceled and its results are discarded even if they arrive
// later.
type Aggregator struct {
	srcs  []sources.Source
	store *state.Store // optional; nil disables persistence

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	health   map[string]bool
	lastLive time.Time
}

// New builds an Aggregator over the adapters in fan-out order. That
// order decides which duplicate survives merge, so it must be stable.
// When a store is given, persisted health warm-starts the snapshot.
func New(srcs []sources.Source, store *state.Store) *Aggregator {
	a := &Aggregator{
		srcs:   srcs,
		store:  store,
		health: make(map[string]bool),
	}
	if store != nil {
		saved, err := store.LoadHealth()
		if err != nil {
			log.Printf("Could not load saved source health: %v", err)
		}
		for name, healthy := range saved {
			a.health[name] = healthy
		}
	}
	return a
}

type outcome struct {
	items   []news.Item
	err     error
	skipped bool
}

// Fetch runs one cycle: dispatch every configured adapter concurrently,
// join them all, then merge, classify, and fold health under a single
// critical section. It returns nil when a newer Fetch superseded this
// one while its adapters were in flight; a nil result must be
// discarded, it carries no health update either.
func (a *Aggregator) Fetch(ctx context.Context, query, category string) *Result {
	started := time.Now()

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel() // supersede the generation still in flight
	}
	cctx, cancel := context.WithCancel(ctx)
	a.gen++
	gen := a.gen
	a.cancel = cancel
	a.mu.Unlock()

	// Join-all, not first-completed: one slow source delays settlement
	// but never drops the others' results. Outcome slots keep fan-out
	// order so merge stays deterministic regardless of arrival order.
	outcomes := make([]outcome, len(a.srcs))
	var wg sync.WaitGroup
	for i, src := range a.srcs {
		if !src.Configured() {
			outcomes[i] = outcome{skipped: true}
			continue
		}
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			items, err := src.Fetch(cctx, query, category)
			outcomes[i] = outcome{items: items, err: err}
		}(i, src)
	}
	wg.Wait()
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Compare-and-commit: only the current generation may touch health
	// or return results.
	if gen != a.gen {
		return nil
	}
	a.cancel = nil

	perSource := make([][]news.Item, 0, len(a.srcs))
	live := false
	for i, src := range a.srcs {
		o := outcomes[i]
		switch {
		case o.skipped:
			// Config gap: no attempt was made, health keeps its prior value.
		case o.err != nil:
			if errors.Is(o.err, context.Canceled) || errors.Is(o.err, context.DeadlineExceeded) {
				// Cancellation is not a failure signal.
				continue
			}
			if errors.Is(o.err, sources.ErrNotAttempted) {
				// Config gap surfaced at call time: no attempt was made,
				// health keeps its prior value.
				continue
			}
			log.Printf("Source %s failed: %v", src.Name(), o.err)
			a.health[src.Name()] = false
		default:
			a.health[src.Name()] = true
			live = true
			perSource = append(perSource, o.items)
		}
	}

	items := merge.Merge(perSource)
	fallback := false
	if len(items) == 0 {
		items = news.Fallback()
		fallback = true
	}
	items = classify.Apply(items)

	now := time.Now()
	if live {
		a.lastLive = now
	}

	snapshot := copyHealth(a.health)
	if a.store != nil {
		if err := a.store.SaveHealth(snapshot); err != nil {
			log.Printf("Could not persist source health: %v", err)
		}
		if err := a.store.RecordCycle(query, category, len(items), fallback, time.Since(started)); err != nil {
			log.Printf("Could not record cycle: %v", err)
		}
	}

	return &Result{
		Items:     items,
		Health:    snapshot,
		Fallback:  fallback,
		Query:     query,
		Category:  category,
		FetchedAt: now,
		LastLive:  a.lastLive,
	}
}

// Health returns a copy of the current last-known-good flags.
func (a *Aggregator) Health() map[string]bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyHealth(a.health)
}

// LastLive returns when a cycle last yielded items from at least one
// real source.
func (a *Aggregator) LastLive() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastLive
}

func copyHealth(health map[string]bool) map[string]bool {
	snapshot := make(map[string]bool, len(health))
	for name, healthy := range health {
		snapshot[name] = healthy
	}
	return snapshot
}
