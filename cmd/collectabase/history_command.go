package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show the recorded price snapshots for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemRef, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || itemRef <= 0 {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snapshots, err := store.History(cmd.Context(), itemRef, limitFlag)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				cmd.Println("No snapshots recorded.")
				return nil
			}

			rows := make([][]string, 0, len(snapshots))
			for _, snap := range snapshots {
				rows = append(rows, []string{
					snap.ObservedAt.Format("2006-01-02 15:04"),
					string(snap.Source),
					formatEUR(snap.LoosePrice),
					formatEUR(snap.CompletePrice),
					formatEUR(snap.NewPrice),
				})
			}
			cmd.Println(renderTable(
				[]string{"Observed", "Source", "Loose (EUR)", "Complete (EUR)", "New (EUR)"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "How many snapshots to show")
	return cmd
}
