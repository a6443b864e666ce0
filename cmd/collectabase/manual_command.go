package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newManualCommand(ctx *commandContext) *cobra.Command {
	var looseFlag, completeFlag, newFlag float64

	cmd := &cobra.Command{
		Use:   "manual <item-id>",
		Short: "Record a hand-entered EUR valuation for an item",
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

			r, err := ctx.newResolver(store)
			if err != nil {
				return err
			}

			snap, err := r.RecordManual(cmd.Context(), itemRef,
				flagValue(cmd, "loose", looseFlag),
				flagValue(cmd, "complete", completeFlag),
				flagValue(cmd, "new", newFlag))
			if err != nil {
				return err
			}

			cmd.Printf("Recorded snapshot %d for item %d.\n", snap.ID, snap.ItemRef)
			return nil
		},
	}

	cmd.Flags().Float64Var(&looseFlag, "loose", 0, "Loose price in EUR")
	cmd.Flags().Float64Var(&completeFlag, "complete", 0, "Complete-in-box price in EUR")
	cmd.Flags().Float64Var(&newFlag, "new", 0, "New/sealed price in EUR")
	return cmd
}

func flagValue(cmd *cobra.Command, name string, value float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
