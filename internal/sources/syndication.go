package sources

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

const maxPerFeed = 15

// Feed is one syndication feed in the adapter's set.
type Feed struct {
	URL      string
	Name     string
	Category string // empty means the feed serves every category
}

// SyndicationSource aggregates a set of RSS/Atom feeds. A failure in
// one feed never aborts the others; the adapter as a whole fails only
// when no feed in the set yielded entries.
type SyndicationSource struct {
	feeds []Feed
}

// NewSyndicationSource builds the adapter over the configured feed set.
func NewSyndicationSource(feeds []Feed) *SyndicationSource {
	return &SyndicationSource{feeds: feeds}
}

func (s *SyndicationSource) Name() string { return "feeds" }

func (s *SyndicationSource) Configured() bool { return len(s.feeds) > 0 }

func (s *SyndicationSource) Fetch(ctx context.Context, query, category string) ([]news.Item, error) {
	// Superseded cycles may still be in flight when a new one starts, so
	// Fetch calls on this adapter can overlap. gofeed parsers mutate
	// internal state lazily on first use and must not be shared.
	parser := gofeed.NewParser()

	var items []news.Item
	attempted := false
	yielded := false

	for _, fc := range s.feeds {
		// Search mode spans all feeds; topical mode only the matching ones.
		if query == "" && fc.Category != "" && fc.Category != category {
			continue
		}

		attempted = true
		entries, err := s.parseFeed(ctx, parser, fc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Feed %s failed: %v", fc.URL, err)
			continue
		}
		if len(entries) > 0 {
			yielded = true
		}
		items = append(items, entries...)
	}

	if !attempted {
		// Every feed was bound to some other category: nothing was tried,
		// so this cycle says nothing about upstream health.
		return nil, ErrNotAttempted
	}
	if !yielded {
		return nil, errors.New("syndication: no feed yielded items")
	}

	if query != "" {
		items = filterByQuery(items, query)
	}
	return items, nil
}

func (s *SyndicationSource) parseFeed(ctx context.Context, parser *gofeed.Parser, fc Feed) ([]news.Item, error) {
	feed, err := parser.ParseURLWithContext(fc.URL, ctx)
	if err != nil {
		return nil, err
	}

	sourceName := fc.Name
	if sourceName == "" {
		sourceName = feed.Title
	}
	if sourceName == "" {
		sourceName = fc.URL
	}

	var entries []news.Item
	for _, item := range feed.Items {
		if len(entries) >= maxPerFeed {
			break
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" {
			link = news.NoLink
		}

		// Feed entries embed raw markup and arbitrarily long bodies.
		description := item.Description
		if description == "" {
			description = item.Content
		}
		description = truncate(stripMarkup(description), maxDescription)

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		var image string
		if item.Image != nil {
			image = cleanImageURL(item.Image.URL)
		}

		entries = append(entries, news.Item{
			Title:       title,
			Description: description,
			SourceName:  sourceName,
			Platform:    news.PlatformSyndication,
			PublishedAt: published,
			URL:         link,
			ImageURL:    image,
		})
	}

	return entries, nil
}

func filterByQuery(items []news.Item, query string) []news.Item {
	q := strings.ToLower(query)
	var matched []news.Item
	for _, it := range items {
		text := strings.ToLower(it.Title + " " + it.Description)
		if strings.Contains(text, q) {
			matched = append(matched, it)
		}
	}
	return matched
}
