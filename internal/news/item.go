// Package news defines the canonical item shape shared by every source
// adapter, the merge step, and the presentation boundary.
package news

import "time"

// NoLink is the sentinel URL for items that carry no real link. Such
// items are identified by title and timestamp instead of URL.
const NoLink = "#"

// Platform identifies the kind of upstream an item came from.
type Platform string

const (
	PlatformHeadlineAPI Platform = "headline-api"
	PlatformVideoAPI    Platform = "video-api"
	PlatformForum       Platform = "forum"
	PlatformSyndication Platform = "syndication"
	PlatformFallback    Platform = "fallback"
)

// Sentiment is the lexical classification assigned after merge.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Item is the normalized unit every adapter produces. Items are built
// fresh each cycle and are immutable once classified.
type Item struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	SourceName  string    `json:"sourceName"`
	Platform    Platform  `json:"platform"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Sentiment   Sentiment `json:"sentiment,omitempty"`
}

// HasLink reports whether the item points at a real URL rather than
// the no-link sentinel.
func (it Item) HasLink() bool {
	return it.URL != "" && it.URL != NoLink
}

// IdentityKey returns the deduplication key: the URL when the item has
// a real link, otherwise title plus timestamp.
func (it Item) IdentityKey() string {
	if it.HasLink() {
		return it.URL
	}
	return it.Title + "\x00" + it.PublishedAt.UTC().Format(time.RFC3339)
}
