/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ssargent/maplink/pkg/config"
	"github.com/ssargent/maplink/pkg/di"
)

var container *di.Container

// SetContainer sets the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

func getContainer() *di.Container {
	if container == nil {
		container = di.NewContainer()
	}
	return container
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maplink <path>",
		Short: "Convert map-link tables between binary and YAML",
		Long: `maplink converts map-link tables between their packed binary form and an
editable YAML document. The direction is picked from the file extension and
the result is written next to the input with the extension swapped.

Examples:
  maplink data_fld_maplink.bin    # writes data_fld_maplink.yaml
  maplink data_fld_maplink.yaml   # writes data_fld_maplink.bin
  maplink --verify=false --log-level debug data_fld_maplink.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConvert,
	}

	cmd.Flags().StringP("config", "c", "", "Path to configuration file (default ~/.config/maplink/config.yaml)")
	cmd.Flags().Bool("verify", true, "Re-check the converted table before writing it")
	cmd.Flags().String("log-level", "", "Logging level (debug, info, warn, error)")
	cmd.Flags().String("metrics-file", "", "Write run metrics to this node_exporter textfile")

	return cmd
}

// loadConfig resolves the configuration and applies explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("verify") {
		cfg.Verify, _ = cmd.Flags().GetBool("verify")
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		cfg.Metrics.Textfile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c := getContainer()
	res, runErr := c.NewConverter(cfg, logger).Run(cmd.Context(), args[0])

	if cfg.Metrics.Textfile != "" {
		if err := c.GetMetrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
			if runErr != nil {
				logger.Warn("metrics not written", "error", err)
			} else {
				return err
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.OutputPath)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
