package main

import (
	"github.com/spf13/cobra"

	"collectabase/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			masked := func(value string) string {
				if value == "" {
					return "(unset)"
				}
				return "(set)"
			}
			cmd.Println(renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Data directory", cfg.Paths.DataDir},
					{"Log directory", cfg.Paths.LogDir},
					{"Scrape base URL", cfg.Scrape.BaseURL},
					{"Scrape max pages", itoa(cfg.Scrape.MaxPages)},
					{"Scrape page delay (ms)", itoa(cfg.Scrape.PageDelayMS)},
					{"Marketplace credentials", masked(cfg.Marketplace.ClientID)},
					{"Metadata credentials", masked(cfg.Metadata.ClientID)},
					{"Currency feed", cfg.Currency.BaseURL},
					{"Log level", cfg.Logging.Level},
					{"Log format", cfg.Logging.Format},
				},
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathFlag
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			cmd.Printf("Wrote sample configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&pathFlag, "path", "", "Destination path for the sample config")
	return cmd
}
