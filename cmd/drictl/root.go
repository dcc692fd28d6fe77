package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-dri/pkg/dri"
	"github.com/tendant/simple-dri/pkg/dri/config"
)

var (
	svc     dri.Service
	closeFn config.CloseFunc

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "drictl",
		Short: "Manage repository records from the command line",
		Long: `drictl works directly against the record store, upload storage and
archive configured through the environment (or a .env file), the same way
the server does.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setupService,
		PersistentPostRunE: closeService,
	}
)

func init() {
	RootCmd.PersistentFlags().String("env-file", ".env", "environment file to load if present")
	RootCmd.PersistentFlags().Bool("verbose", false, "log service activity to stderr")

	RootCmd.AddCommand(recordCmd)
	RootCmd.AddCommand(typesCmd)
	RootCmd.AddCommand(recentCmd)
	RootCmd.AddCommand(editedCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(childrenCmd)
	RootCmd.AddCommand(countCmd)
	RootCmd.AddCommand(convertCmd)
	RootCmd.AddCommand(approveCmd)
	RootCmd.AddCommand(uploadCmd)
}

// setupService builds the service from the environment
func setupService(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		// a missing file is fine, the environment may carry everything
		_ = godotenv.Load(envFile)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	}

	svc, closeFn, err = cfg.BuildService(cmd.Context(), logger)
	return err
}

func closeService(cmd *cobra.Command, _ []string) error {
	if closeFn == nil {
		return nil
	}
	return closeFn(context.Background())
}

// printJSON writes v to the command output as indented JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
