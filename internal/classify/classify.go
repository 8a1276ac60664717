// Package classify tags items with a lexical sentiment heuristic.
//
// The classifier counts occurrences of fixed positive and negative
// lexicon words in the lowercased title and description. Matching is
// plain substring counting, not word-boundary aware: "winter" counts a
// hit for "win". That is a known, accepted approximation. The lexicons
// and matching semantics are frozen so golden outputs stay stable;
// any accuracy change is a new, versioned policy.
package classify

import (
	"strings"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

var positiveWords = []string{
	"success", "win", "growth", "breakthrough", "achievement",
	"record", "profit", "surge", "boost", "milestone",
	"improve", "innovation", "gain", "celebrate", "hope",
}

var negativeWords = []string{
	"crash", "crisis", "fail", "fear", "threat",
	"decline", "loss", "drop", "war", "death",
	"recession", "scandal", "fraud", "attack", "collapse",
}

// Classify returns the sentiment for a single item. Pure and
// deterministic; safe to call concurrently.
func Classify(it news.Item) news.Sentiment {
	text := strings.ToLower(it.Title + " " + it.Description)

	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(text, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(text, w)
	}

	switch {
	case pos > neg:
		return news.SentimentPositive
	case neg > pos:
		return news.SentimentNegative
	default:
		return news.SentimentNeutral
	}
}

// Apply tags every item in place and returns the slice.
func Apply(items []news.Item) []news.Item {
	for i := range items {
		items[i].Sentiment = Classify(items[i])
	}
	return items
}
