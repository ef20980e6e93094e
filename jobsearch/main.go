package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jobs-search/internal/cli"
	"github.com/jobs-search/internal/config"
	"github.com/jobs-search/internal/pipeline"
	"github.com/jobs-search/internal/repo"
	"github.com/jobs-search/internal/services"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var saveKey, resetKey, verbose bool

	cmd := &cobra.Command{
		Use:   "jobsearch",
		Short: "Search the web for current job listings with an AI model",
		Long: `jobsearch asks an OpenRouter model with live web search for current job
listings that match your keywords and location, and prints them.

The API key is read from the stored credentials file, then from
OPENROUTER_API_KEY, and otherwise asked for and saved.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), verbose)

			cfg := config.Load()
			creds, err := repo.NewCredentialRepository(cfg.ConfigDir)
			if err != nil {
				return err
			}

			newSearcher := func(apiKey string) pipeline.Searcher {
				svc := services.NewOpenRouterService(cfg.Model, apiKey, cfg.APIBase)
				return &svc
			}
			app := cli.NewApp(cfg, creds, newSearcher, cmd.InOrStdin(), cmd.OutOrStdout())

			switch {
			case saveKey:
				return app.SaveKey()
			case resetKey:
				return app.ResetKey()
			}
			return app.Search(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&saveKey, "save-key", false, "prompt for an API key and store it")
	cmd.Flags().BoolVar(&resetKey, "reset-key", false, "delete the stored API key")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.MarkFlagsMutuallyExclusive("save-key", "reset-key")

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
