package merge

import (
	"testing"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

func ts(day int) time.Time {
	return time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC)
}

func titles(items []news.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestMergeSortsDescendingByPublishedAt(t *testing.T) {
	merged := Merge([][]news.Item{{
		{Title: "oldest", URL: "https://a.com/1", PublishedAt: ts(1)},
		{Title: "newest", URL: "https://a.com/3", PublishedAt: ts(3)},
		{Title: "middle", URL: "https://a.com/2", PublishedAt: ts(2)},
	}})

	want := []string{"newest", "middle", "oldest"}
	got := titles(merged)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMergeAbsentTimestampsSinkInStableOrder(t *testing.T) {
	merged := Merge([][]news.Item{{
		{Title: "undated-a", URL: "https://a.com/x"},
		{Title: "dated", URL: "https://a.com/d", PublishedAt: ts(2)},
		{Title: "undated-b", URL: "https://a.com/y"},
	}})

	want := []string{"dated", "undated-a", "undated-b"}
	got := titles(merged)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMergeFirstSeenWinsInDeclarationOrder(t *testing.T) {
	first := []news.Item{{Title: "from first source", URL: "https://shared.com/story", PublishedAt: ts(1)}}
	second := []news.Item{{Title: "from second source", URL: "https://shared.com/story", PublishedAt: ts(5)}}

	merged := Merge([][]news.Item{first, second})
	if len(merged) != 1 {
		t.Fatalf("expected 1 item after dedup, got %d", len(merged))
	}
	if merged[0].Title != "from first source" {
		t.Errorf("expected the first source's copy to survive, got %q", merged[0].Title)
	}
}

func TestMergeSameURLDifferentTitlesAreDuplicates(t *testing.T) {
	merged := Merge([][]news.Item{{
		{Title: "headline as seen on site A", URL: "https://shared.com/story"},
		{Title: "same story, different headline", URL: "https://shared.com/story"},
	}})
	if len(merged) != 1 {
		t.Errorf("expected identical URLs to merge, got %d items", len(merged))
	}
}

func TestMergeNoLinkItemsKeyedByTitleAndTime(t *testing.T) {
	merged := Merge([][]news.Item{{
		{Title: "first headline", URL: news.NoLink, PublishedAt: ts(1)},
		{Title: "second headline", URL: news.NoLink, PublishedAt: ts(1)},
		{Title: "first headline", URL: news.NoLink, PublishedAt: ts(1)},
	}})
	if len(merged) != 2 {
		t.Errorf("expected 2 items (sentinel URLs keyed by title+time), got %d", len(merged))
	}
}

func TestMergeIdempotent(t *testing.T) {
	input := [][]news.Item{
		{
			{Title: "a", URL: "https://a.com/1", PublishedAt: ts(3)},
			{Title: "dup", URL: "https://a.com/dup", PublishedAt: ts(2)},
		},
		{
			{Title: "dup again", URL: "https://a.com/dup", PublishedAt: ts(4)},
			{Title: "b", URL: "https://b.com/1"},
		},
	}

	once := Merge(input)
	twice := Merge([][]news.Item{once})

	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %d then %d items", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("item %d changed on second merge: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
	if got := Merge([][]news.Item{nil, {}}); len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
}
