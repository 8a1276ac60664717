package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

const videoBaseURL = "https://www.googleapis.com/youtube/v3"

const videoMaxResults = 15

// VideoSource fetches news videos from a YouTube-style data API. The
// search endpoint covers both modes: the category becomes a topical
// search term when no query is given.
type VideoSource struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewVideoSource builds the adapter, resolving the API key from the
// named environment variable.
func NewVideoSource(apiKeyEnv string) *VideoSource {
	return &VideoSource{
		apiKey:  os.Getenv(apiKeyEnv),
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: videoBaseURL,
	}
}

func (s *VideoSource) Name() string { return "videos" }

func (s *VideoSource) Configured() bool { return s.apiKey != "" }

func (s *VideoSource) Fetch(ctx context.Context, query, category string) ([]news.Item, error) {
	term := query
	if term == "" {
		term = category + " news"
	}

	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"q":          {term},
		"order":      {"date"},
		"maxResults": {fmt.Sprintf("%d", videoMaxResults)},
		"key":        {s.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video API: HTTP %d", resp.StatusCode)
	}

	var envelope struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
				Thumbnails   struct {
					Medium struct {
						URL string `json:"url"`
					} `json:"medium"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("video API: decoding response: %w", err)
	}

	var items []news.Item
	for _, v := range envelope.Items {
		// Titles arrive entity-encoded from this upstream.
		title := strings.TrimSpace(html.UnescapeString(v.Snippet.Title))
		if title == "" {
			continue
		}

		link := news.NoLink
		if v.ID.VideoID != "" {
			link = "https://www.youtube.com/watch?v=" + v.ID.VideoID
		}

		sourceName := v.Snippet.ChannelTitle
		if sourceName == "" {
			sourceName = s.Name()
		}

		var published time.Time
		if v.Snippet.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
				published = t
			}
		}

		items = append(items, news.Item{
			Title:       title,
			Description: strings.TrimSpace(html.UnescapeString(v.Snippet.Description)),
			SourceName:  sourceName,
			Platform:    news.PlatformVideoAPI,
			PublishedAt: published,
			URL:         link,
			ImageURL:    cleanImageURL(v.Snippet.Thumbnails.Medium.URL),
		})
	}

	return items, nil
}
