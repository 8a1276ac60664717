package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

// maxDescription bounds descriptions from feed-style sources, which
// often embed whole article bodies.
const maxDescription = 300

var markdown = goldmark.New()

// stripMarkup removes HTML tags and collapses whitespace. Upstreams
// that embed raw markup in descriptions go through this before the
// text reaches an Item.
func stripMarkup(s string) string {
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	return collapseWhitespace(doc.Text())
}

// markdownToText renders markdown to HTML and strips it back to plain
// text. Forum self-posts arrive as markdown.
func markdownToText(s string) string {
	if s == "" {
		return ""
	}

	var buf strings.Builder
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return collapseWhitespace(s)
	}
	return stripMarkup(buf.String())
}

// truncate caps s at max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// cleanImageURL returns u only when it is a fetchable image reference;
// placeholder values like Reddit's "self" degrade to empty rather than
// a broken link.
func cleanImageURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
