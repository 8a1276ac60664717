package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/NewsDesk/internal/aggregate"
	"github.com/TobiSchelling/NewsDesk/internal/config"
	"github.com/TobiSchelling/NewsDesk/internal/fetch"
	"github.com/TobiSchelling/NewsDesk/internal/server"
	"github.com/TobiSchelling/NewsDesk/internal/sources"
	"github.com/TobiSchelling/NewsDesk/internal/state"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newsdesk",
	Short:   "Aggregated news from heterogeneous sources",
	Long:    "NewsDesk fans out to headline, video, forum, and syndication sources concurrently and merges the results into one deduplicated, time-ordered feed.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Credentials may live in a .env next to the binary.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(readCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newsdesk", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newsdesk/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds and API key environment variables.")
		return nil
	},
}

// --- fetch command ---

var (
	fetchQuery    string
	fetchCategory string
	fetchJSON     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one aggregation cycle and print the feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		agg := aggregate.New(buildSources(cfg), store)
		result := agg.Fetch(context.Background(), fetchQuery, fetchCategory)

		if fetchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if result.Fallback {
			fmt.Println("No live results — showing fallback content.")
		}
		for _, it := range result.Items {
			ts := "          "
			if !it.PublishedAt.IsZero() {
				ts = it.PublishedAt.Format("2006-01-02")
			}
			fmt.Printf("%s  [%s] %-9s  %s\n", ts, it.Sentiment, it.Platform, it.Title)
		}

		fmt.Println("\nSources:")
		printHealth(result.Health)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchQuery, "query", "q", "", "Free-text search query (empty for topical mode)")
	fetchCmd.Flags().StringVar(&fetchCategory, "category", "general", "Category for topical mode")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the raw JSON result")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		agg := aggregate.New(buildSources(cfg), store)
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(agg, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show source health and recent cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		health, err := store.LoadHealth()
		if err != nil {
			return fmt.Errorf("loading health: %w", err)
		}

		fmt.Println("Source health (last known):")
		if len(health) == 0 {
			fmt.Println("  no cycles recorded yet")
		} else {
			printHealth(health)
		}

		stats, err := store.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		fmt.Println("\nCycles:")
		fmt.Printf("  Total: %d\n", stats.TotalCycles)
		fmt.Printf("  Fallback: %d\n", stats.FallbackCycles)
		if stats.LastCycleAt != "" {
			fmt.Printf("  Last: %s\n", stats.LastCycleAt)
		}

		cycles, err := store.RecentCycles(5)
		if err != nil {
			return err
		}
		if len(cycles) > 0 {
			fmt.Println("\nRecent:")
			for _, c := range cycles {
				label := c.Category
				if c.Query != "" {
					label = fmt.Sprintf("%q", c.Query)
				}
				fmt.Printf("  %s  %-20s %3d items  %v\n", c.StartedAt, label, c.ItemCount, c.Duration)
			}
		}
		return nil
	},
}

// --- sources command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and whether they are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, src := range buildSources(cfg) {
			status := "configured"
			if !src.Configured() {
				status = "skipped (no credential or config)"
			}
			fmt.Printf("  %-10s %s\n", src.Name(), status)
		}
		return nil
	},
}

// --- read command ---

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Extract and print the readable text of an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extractor := fetch.NewExtractor(15 * time.Second)
		article, err := extractor.Extract(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(article.Title)
		if article.Byline != "" {
			fmt.Println(article.Byline)
		}
		fmt.Println()
		fmt.Println(article.Text)
		return nil
	},
}

// buildSources constructs the adapters in fan-out order. This order is
// also merge priority: the headline API wins ties, the feeds lose them.
func buildSources(cfg *config.Config) []sources.Source {
	var srcs []sources.Source

	if cfg.Sources.Headline.Enabled {
		srcs = append(srcs, sources.NewHeadlineSource(cfg.Sources.Headline.APIKeyEnv))
	}
	if cfg.Sources.Video.Enabled {
		srcs = append(srcs, sources.NewVideoSource(cfg.Sources.Video.APIKeyEnv))
	}
	srcs = append(srcs, sources.NewForumSource(cfg.Sources.Forum.Enabled, cfg.Sources.Forum.UserAgent))

	feeds := make([]sources.Feed, len(cfg.Sources.Feeds))
	for i, f := range cfg.Sources.Feeds {
		feeds[i] = sources.Feed{URL: f.URL, Name: f.Name, Category: f.Category}
	}
	srcs = append(srcs, sources.NewSyndicationSource(feeds))

	return srcs
}

func printHealth(health map[string]bool) {
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "down"
		if health[name] {
			status = "ok"
		}
		fmt.Printf("  %-10s %s\n", name, status)
	}
}

func openStore() (*state.Store, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return state.Open(filepath.Join(dataDir, "newsdesk.db"))
}
