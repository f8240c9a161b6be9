package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jknam3036-svg/smart-news-engine/internal/config"
	"github.com/jknam3036-svg/smart-news-engine/internal/store"
)

var (
	searchTag   string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored intelligence records",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTag, "tag", "t", "", "Filter by tag instead of text query")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var records []store.RecordWithTags
	if searchTag != "" {
		records, err = db.GetByTag(searchTag)
	} else {
		query := ""
		if len(args) > 0 {
			query = strings.Join(args, " ")
		}
		records, err = db.Search(query)
	}
	if err != nil {
		return err
	}

	if len(records) > searchLimit {
		records = records[:searchLimit]
	}
	if len(records) == 0 {
		fmt.Println("no records found")
		return nil
	}

	for _, rw := range records {
		r := rw.Record
		when := time.UnixMilli(r.CapturedAt).Format("2006-01-02 15:04")
		fmt.Printf("%-8s %-9s %s  %s\n", r.SourceKind, r.Priority, when, truncate(r.Summary, 70))
		fmt.Printf("         %s", r.ID)
		if len(rw.Tags) > 0 {
			names := make([]string, len(rw.Tags))
			for i, t := range rw.Tags {
				names[i] = t.Name
			}
			fmt.Printf("  [%s]", strings.Join(names, ", "))
		}
		fmt.Println()
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func openDB() (*store.DB, error) {
	cfg := config.FromEnv()
	path := cfg.Database.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
