package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"collectabase/internal/currency"
	"collectabase/internal/match"
	"collectabase/internal/scrape"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the local price catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCatalogScrapeCommand(ctx))
	cmd.AddCommand(newCatalogMatchCommand(ctx))
	cmd.AddCommand(newCatalogClearCommand(ctx))
	cmd.AddCommand(newCatalogStatsCommand(ctx))
	return cmd
}

func newCatalogScrapeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <platform>",
		Short: "Scrape a platform's full price catalog into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			platform := args[0]
			slug := scrape.PlatformSlug(platform)
			if slug == "" {
				return fmt.Errorf("unknown platform %q", platform)
			}

			// One catalog scrape at a time per data dir.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire scrape lock: %w", err)
			}
			if !locked {
				return errors.New("another scrape is already running")
			}
			defer func() { _ = lock.Unlock() }()

			scraper, err := ctx.newScraper()
			if err != nil {
				return err
			}

			observations, err := scraper.ScrapePlatformCatalog(cmd.Context(), slug, platform)
			if err != nil {
				return err
			}
			if len(observations) == 0 {
				cmd.Println("No catalog entries found.")
				return nil
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rates := currency.New(
				currency.WithBaseURL(cfg.Currency.BaseURL),
				currency.WithLogger(logger))
			rate, live := rates.ReferenceRate(cmd.Context())

			stats, err := store.Upsert(cmd.Context(), observations, rate)
			if err != nil {
				return err
			}

			rateNote := fmt.Sprintf("%.4f", rate)
			if !live {
				rateNote += " (fallback)"
			}
			cmd.Println(renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Scraped", strconv.Itoa(len(observations))},
					{"Processed", strconv.Itoa(stats.Processed)},
					{"Inserted", strconv.Itoa(stats.Inserted)},
					{"Updated", strconv.Itoa(stats.Updated)},
					{"Unchanged", strconv.Itoa(stats.Unchanged)},
					{"Deduped in batch", strconv.Itoa(stats.DedupedInBatch)},
					{"Duplicate rows removed", strconv.Itoa(stats.DuplicatesRemoved)},
					{"USD to EUR rate", rateNote},
				},
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	return cmd
}

func newCatalogMatchCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string
	var topFlag int

	cmd := &cobra.Command{
		Use:   "match <title>",
		Short: "Show the top scored catalog matches for a title without resolving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			candidates, err := store.TopCandidates(cmd.Context(), args[0], platformFlag, topFlag)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				cmd.Println("No catalog entries to score.")
				return nil
			}

			rows := make([][]string, 0, len(candidates))
			for _, candidate := range candidates {
				entry := candidate.Entry
				rows = append(rows, []string{
					entry.Title,
					displayPlatform(entry.Platform),
					formatScore(candidate.Score),
					formatEUR(entry.LooseEUR),
					formatEUR(entry.CompleteEUR),
					entry.LastSeenAt.Format("2006-01-02 15:04"),
				})
			}
			cmd.Println(renderTable(
				[]string{"Title", "Platform", "Score", "Loose (EUR)", "Complete (EUR)", "Last seen"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}))
			if candidates[0].Score < match.Threshold {
				cmd.Printf("No candidate reaches the accept threshold of %.2f.\n", match.Threshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Platform to scope the lookup to")
	cmd.Flags().IntVar(&topFlag, "top", 5, "How many candidates to show")
	return cmd
}

func newCatalogClearCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [platform]",
		Short: "Remove cached catalog entries, optionally for one platform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			platform := ""
			if len(args) == 1 {
				platform = args[0]
			}
			removed, err := store.Clear(cmd.Context(), normalizePlatformArg(platform))
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d catalog entries.\n", removed)
			return nil
		},
	}
	return cmd
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Count(cmd.Context(), normalizePlatformArg(platformFlag))
			if err != nil {
				return err
			}
			cmd.Printf("%d catalog entries.\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Platform to count")
	return cmd
}
