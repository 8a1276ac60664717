package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

const forumBaseURL = "https://www.reddit.com"

const forumListingLimit = 30

// categorySubreddits maps the fixed category set to the community
// whose hot listing backs topical mode. Unknown categories pass
// through as subreddit names.
var categorySubreddits = map[string]string{
	"general":       "news",
	"technology":    "technology",
	"business":      "business",
	"science":       "science",
	"health":        "health",
	"sports":        "sports",
	"entertainment": "entertainment",
}

// ForumSource fetches from a Reddit-style public JSON listing. No
// credential is required; the adapter is configured by enabling it.
type ForumSource struct {
	enabled   bool
	userAgent string
	client    *http.Client
	baseURL   string
}

// NewForumSource builds the adapter. userAgent identifies the client
// to the upstream, which rejects anonymous defaults.
func NewForumSource(enabled bool, userAgent string) *ForumSource {
	if userAgent == "" {
		userAgent = "NewsDesk/1.0 (news aggregator)"
	}
	return &ForumSource{
		enabled:   enabled,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   forumBaseURL,
	}
}

func (s *ForumSource) Name() string { return "forum" }

func (s *ForumSource) Configured() bool { return s.enabled }

func (s *ForumSource) Fetch(ctx context.Context, query, category string) ([]news.Item, error) {
	var endpoint string
	params := url.Values{
		"limit":    {fmt.Sprintf("%d", forumListingLimit)},
		"raw_json": {"1"},
	}

	if query == "" {
		sub := categorySubreddits[category]
		if sub == "" {
			sub = category
		}
		endpoint = s.baseURL + "/r/" + url.PathEscape(sub) + "/hot.json"
	} else {
		endpoint = s.baseURL + "/search.json"
		params.Set("q", query)
		params.Set("sort", "new")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forum listing: HTTP %d", resp.StatusCode)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					Title      string  `json:"title"`
					Selftext   string  `json:"selftext"`
					Permalink  string  `json:"permalink"`
					Thumbnail  string  `json:"thumbnail"`
					Subreddit  string  `json:"subreddit"`
					CreatedUTC float64 `json:"created_utc"`
					Stickied   bool    `json:"stickied"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("forum listing: decoding response: %w", err)
	}

	var items []news.Item
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Title == "" || post.Stickied {
			continue
		}

		link := news.NoLink
		if post.Permalink != "" {
			link = forumBaseURL + post.Permalink
		}

		var published time.Time
		if post.CreatedUTC > 0 {
			published = time.Unix(int64(post.CreatedUTC), 0).UTC()
		}

		// Self-post bodies are markdown.
		description := truncate(markdownToText(post.Selftext), maxDescription)

		items = append(items, news.Item{
			Title:       post.Title,
			Description: description,
			SourceName:  "r/" + post.Subreddit,
			Platform:    news.PlatformForum,
			PublishedAt: published,
			URL:         link,
			ImageURL:    cleanImageURL(post.Thumbnail),
		})
	}

	return items, nil
}
