// Package sources holds the adapters that fetch and normalize items
// from the four upstream kinds: headline API, video API, forum
// listing, and syndication feeds.
package sources

import (
	"context"
	"errors"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

// ErrNotAttempted reports that an adapter made no upstream call this
// cycle because its configuration offered nothing to try for the given
// query and category. It is a configuration gap, not a failure: the
// caller must leave the source's health at its prior value.
var ErrNotAttempted = errors.New("sources: nothing to attempt this cycle")

// Source is one upstream adapter. Query may be empty (topical mode,
// driven by category) or non-empty (search mode); adapters that ignore
// category in search mode still accept it. Unknown categories are
// passed through as opaque strings.
type Source interface {
	// Name identifies the source in health reporting; stable across cycles.
	Name() string

	// Configured reports whether the adapter has the credentials or
	// config it needs. Unconfigured sources are skipped without any
	// network I/O and without a health penalty.
	Configured() bool

	// Fetch returns normalized items for one cycle. A canceled ctx is
	// surfaced as the context error; any other error is a transport or
	// upstream failure for this cycle only.
	Fetch(ctx context.Context, query, category string) ([]news.Item, error)
}
