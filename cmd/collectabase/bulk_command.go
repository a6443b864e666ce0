package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"collectabase/internal/resolver"
)

func newBulkCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <items.csv>",
		Short: "Resolve prices for a CSV of items",
		Long: `Bulk reads a CSV with one item per line in the form

    id,title,platform

where id and platform may be empty, and resolves each item in turn with a
short delay between lookups.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItemsCSV(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return errors.New("no items found in input file")
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := ctx.newResolver(store)
			if err != nil {
				return err
			}

			outcomes, stats, err := r.ResolveAll(cmd.Context(), items)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(outcomes))
			for _, outcome := range outcomes {
				rows = append(rows, bulkRow(outcome))
			}
			cmd.Println(renderTable(
				[]string{"Title", "Platform", "Source", "Loose (EUR)", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))

			cmd.Printf("%d resolved, %d manual, %d failed of %d items\n",
				stats.Resolved, stats.Manual, stats.Failed, stats.Total)
			return nil
		},
	}
	return cmd
}

func bulkRow(outcome resolver.BulkOutcome) []string {
	row := []string{outcome.Item.Title, displayPlatform(outcome.Item.Platform), "", "-", ""}
	switch {
	case outcome.Err == nil:
		row[2] = string(outcome.Resolution.Source)
		row[3] = formatEUR(outcome.Resolution.LooseEUR)
		row[4] = "ok"
	case errors.Is(outcome.Err, resolver.ErrManualValuation):
		row[4] = "manual"
	default:
		row[4] = "error: " + outcome.Err.Error()
	}
	return row
}

func readItemsCSV(path string) ([]resolver.Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var items []resolver.Item
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read items file: %w", err)
		}
		item, ok, err := parseItemRecord(record)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func parseItemRecord(record []string) (resolver.Item, bool, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	if len(record) < 2 || record[1] == "" {
		return resolver.Item{}, false, nil
	}
	// Tolerate a header row.
	if strings.EqualFold(record[1], "title") && (record[0] == "" || strings.EqualFold(record[0], "id")) {
		return resolver.Item{}, false, nil
	}

	var item resolver.Item
	if record[0] != "" {
		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return resolver.Item{}, false, fmt.Errorf("invalid item id %q", record[0])
		}
		item.ID = id
	}
	item.Title = record[1]
	if len(record) > 2 {
		item.Platform = record[2]
	}
	return item, true, nil
}
