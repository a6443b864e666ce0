package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"collectabase/internal/resolver"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string
	var itemFlag int64

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve the market price for a title",
		Long: `Resolve walks the price sources in order: the local catalog cache, a live
price guide scrape, a marketplace listing aggregate, and finally reference
links for manual research. The first source with a price wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := ctx.newResolver(store)
			if err != nil {
				return err
			}

			res, err := r.ResolveMarketPrice(cmd.Context(), resolver.Item{
				ID:       itemFlag,
				Title:    args[0],
				Platform: platformFlag,
			})
			if errors.Is(err, resolver.ErrManualValuation) {
				printManualGuidance(cmd, res)
				return nil
			}
			if err != nil {
				return err
			}

			printResolution(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Platform to scope the lookup to")
	cmd.Flags().Int64Var(&itemFlag, "item", 0, "Inventory item ID to record a snapshot for")
	return cmd
}

func printResolution(cmd *cobra.Command, res *resolver.Resolution) {
	rows := [][]string{
		{"Source", string(res.Source)},
		{"Matched", res.MatchedTitle},
		{"Platform", displayPlatform(res.MatchedPlatform)},
		{"Loose (EUR)", formatEUR(res.LooseEUR)},
		{"Complete (EUR)", formatEUR(res.CompleteEUR)},
		{"New (EUR)", formatEUR(res.NewEUR)},
	}
	if res.MatchScore > 0 {
		rows = append(rows, []string{"Match score", formatScore(res.MatchScore)})
	}
	if res.ConversionRate > 0 {
		rows = append(rows, []string{"USD to EUR rate", fmt.Sprintf("%.4f", res.ConversionRate)})
	}
	if res.SampleSize > 0 {
		rows = append(rows, []string{"Sample size", strconv.Itoa(res.SampleSize)})
		rows = append(rows, []string{"Price range (EUR)",
			formatEUR(res.PriceMin) + " to " + formatEUR(res.PriceMax)})
	}
	if res.ExternalID != "" {
		rows = append(rows, []string{"External ID", res.ExternalID})
	}
	rows = append(rows, []string{"Request", res.RequestID})

	cmd.Println(renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func printManualGuidance(cmd *cobra.Command, res *resolver.Resolution) {
	cmd.Println("No market price found. Set the value manually.")
	if res == nil {
		return
	}
	if res.ReferenceName != "" {
		line := "Closest metadata match: " + res.ReferenceName
		if len(res.ReferencePlatforms) > 0 {
			line += " (" + strings.Join(res.ReferencePlatforms, ", ") + ")"
		}
		cmd.Println(line)
	}
	if res.ReferenceCoverURL != "" {
		cmd.Println("Cover: " + res.ReferenceCoverURL)
	}
	if len(res.ReferenceLinks) == 0 {
		return
	}
	cmd.Println("Reference links for research:")
	for _, link := range res.ReferenceLinks {
		cmd.Println("  " + link)
	}
}
