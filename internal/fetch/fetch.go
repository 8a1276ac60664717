// Package fetch extracts readable article text from an item's URL for
// the reading view. It is outside the aggregation cycle: the engine
// never fetches full bodies on its own.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// minExtractedLength guards against readability returning boilerplate
// scraps instead of article text.
const minExtractedLength = 100

// Article is the extracted reading view of one item URL.
type Article struct {
	Title   string `json:"title"`
	Byline  string `json:"byline,omitempty"`
	Text    string `json:"text"`
	SiteURL string `json:"siteUrl"`
}

// Extractor fetches a page and extracts its readable content.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an extractor with the given transport timeout.
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Extract downloads articleURL and returns its readable content.
func (e *Extractor) Extract(ctx context.Context, articleURL string) (*Article, error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil || !strings.HasPrefix(parsedURL.Scheme, "http") {
		return nil, fmt.Errorf("not a fetchable URL: %s", articleURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "NewsDesk/1.0 (news aggregator)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < minExtractedLength {
		return nil, errors.New("no extractable content")
	}

	return &Article{
		Title:   article.Title,
		Byline:  article.Byline,
		Text:    text,
		SiteURL: articleURL,
	}, nil
}
