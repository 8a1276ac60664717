package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

const headlineBaseURL = "https://newsapi.org/v2"

const headlinePageSize = 30

// HeadlineSource fetches from a NewsAPI-style headline service. With an
// empty query it pulls the category's top headlines; with a query it
// searches the full article index.
type HeadlineSource struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewHeadlineSource builds the adapter, resolving the API key from the
// named environment variable.
func NewHeadlineSource(apiKeyEnv string) *HeadlineSource {
	return &HeadlineSource{
		apiKey:  os.Getenv(apiKeyEnv),
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: headlineBaseURL,
	}
}

func (s *HeadlineSource) Name() string { return "headlines" }

func (s *HeadlineSource) Configured() bool { return s.apiKey != "" }

func (s *HeadlineSource) Fetch(ctx context.Context, query, category string) ([]news.Item, error) {
	var endpoint string
	params := url.Values{
		"pageSize": {fmt.Sprintf("%d", headlinePageSize)},
		"language": {"en"},
	}

	if query == "" {
		endpoint = s.baseURL + "/top-headlines"
		params.Set("category", category)
	} else {
		endpoint = s.baseURL + "/everything"
		params.Set("q", query)
		params.Set("sortBy", "publishedAt")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headline API: HTTP %d", resp.StatusCode)
	}

	var envelope struct {
		Status   string `json:"status"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			URLToImage  string `json:"urlToImage"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("headline API: decoding response: %w", err)
	}
	if envelope.Status != "ok" {
		return nil, fmt.Errorf("headline API: status %q", envelope.Status)
	}

	var items []news.Item
	for _, a := range envelope.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}

		link := a.URL
		if link == "" || link == "https://removed.com" {
			link = news.NoLink
		}

		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = s.Name()
		}

		var published time.Time
		if a.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				published = t
			}
		}

		items = append(items, news.Item{
			Title:       title,
			Description: strings.TrimSpace(a.Description),
			SourceName:  sourceName,
			Platform:    news.PlatformHeadlineAPI,
			PublishedAt: published,
			URL:         link,
			ImageURL:    cleanImageURL(a.URLToImage),
		})
	}

	return items, nil
}
