package news

// Fallback returns the fixed item set substituted when a cycle yields
// nothing. The slice is rebuilt on every call so callers can tag it
// without sharing state across cycles.
func Fallback() []Item {
	return []Item{
		{
			Title:       "No live sources are currently available",
			Description: "NewsDesk could not reach any configured source. Check your network connection and API keys, then refresh.",
			SourceName:  "NewsDesk",
			Platform:    PlatformFallback,
			URL:         NoLink,
		},
		{
			Title:       "Configure sources to see live headlines",
			Description: "Run 'newsdesk init' and add API keys for the headline, video, and forum sources, or list syndication feeds in the config.",
			SourceName:  "NewsDesk",
			Platform:    PlatformFallback,
			URL:         NoLink,
		},
		{
			Title:       "Source status is shown even while offline",
			Description: "The health panel reflects the last attempt per source, so a broken upstream is visible even when fallback content is displayed.",
			SourceName:  "NewsDesk",
			Platform:    PlatformFallback,
			URL:         NoLink,
		},
	}
}
