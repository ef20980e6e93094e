// Package cli implements the interactive front-end: key management and the
// keyword/location prompts that drive a search.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jobs-search/internal/config"
	"github.com/jobs-search/internal/models"
	"github.com/jobs-search/internal/pipeline"
	"github.com/jobs-search/internal/repo"
	"github.com/jobs-search/internal/services"
)

// ErrInputClosed is returned when stdin ends before a required answer was given.
var ErrInputClosed = errors.New("input closed before an answer was given")

// CredentialStore is the subset of repo.CredentialRepository the app needs.
type CredentialStore interface {
	Load() (string, error)
	Save(value string) error
	Delete() error
	Exists() bool
	Path() string
}

// SearcherFactory builds a Searcher once the API key is known.
type SearcherFactory func(apiKey string) pipeline.Searcher

// App holds the dependencies for one invocation
type App struct {
	config      config.Config
	creds       CredentialStore
	newSearcher SearcherFactory
	scanner     *bufio.Scanner
	out         io.Writer
}

// NewApp creates the CLI application
func NewApp(cfg config.Config, creds CredentialStore, newSearcher SearcherFactory, in io.Reader, out io.Writer) *App {
	return &App{
		config:      cfg,
		creds:       creds,
		newSearcher: newSearcher,
		scanner:     bufio.NewScanner(in),
		out:         out,
	}
}

// SaveKey prompts for a key and stores it, replacing any previous one.
func (a *App) SaveKey() error {
	key, err := a.promptKey()
	if err != nil {
		return err
	}
	return a.storeKey(key)
}

// ResetKey removes the stored key. Nothing stored is not an error.
func (a *App) ResetKey() error {
	existed := a.creds.Exists()
	if err := a.creds.Delete(); err != nil {
		return fmt.Errorf("failed to remove stored API key: %w", err)
	}

	if existed {
		fmt.Fprintf(a.out, "API key removed from %s\n", a.creds.Path())
	} else {
		fmt.Fprintln(a.out, "No stored API key, nothing to remove.")
	}
	return nil
}

// Search resolves the key, asks for keywords and location and prints the results.
func (a *App) Search(ctx context.Context) error {
	key, err := a.resolveKey()
	if err != nil {
		return err
	}

	query, err := a.promptQuery()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nSearching the web for %q jobs, this can take a minute...\n\n", query.Keywords)

	_, err = pipeline.NewJobPipeline(a.newSearcher(key), a.out).Run(ctx, query)
	switch {
	case errors.Is(err, services.ErrInvalidAPIKey):
		return fmt.Errorf("%w\nRun \"jobsearch --save-key\" to store a new key, or \"jobsearch --reset-key\" to remove the saved one", err)
	case errors.Is(err, services.ErrConnectivity):
		return fmt.Errorf("%w\nCheck your internet connection and try again", err)
	}
	return err
}

// resolveKey tries the stored key, then OPENROUTER_API_KEY, then asks the user.
// Only a key typed at the prompt is saved.
func (a *App) resolveKey() (string, error) {
	key, err := a.creds.Load()
	if err == nil {
		slog.Debug("using stored API key", slog.String("path", a.creds.Path()))
		return key, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("failed to read stored API key: %w", err)
	}

	if a.config.APIKey != "" {
		slog.Debug("using API key from OPENROUTER_API_KEY")
		return a.config.APIKey, nil
	}

	fmt.Fprintln(a.out, strings.Repeat("=", 70))
	fmt.Fprintln(a.out, "OPENROUTER API KEY REQUIRED")
	fmt.Fprintln(a.out, strings.Repeat("=", 70))
	fmt.Fprintln(a.out, "You need an API key from: https://openrouter.ai/keys")
	fmt.Fprintln(a.out, "It will be saved for future use, readable only by you.")

	key, err = a.promptKey()
	if err != nil {
		return "", err
	}
	if err := a.storeKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (a *App) promptKey() (string, error) {
	key, err := a.ask("Enter your OpenRouter API key: ")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("no API key entered")
	}
	return key, nil
}

func (a *App) storeKey(key string) error {
	if err := a.creds.Save(key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	fmt.Fprintf(a.out, "API key %s saved to %s\n", repo.Mask(key), a.creds.Path())
	return nil
}

func (a *App) promptQuery() (models.SearchQuery, error) {
	var q models.SearchQuery
	for q.Keywords == "" {
		keywords, err := a.ask("Job keywords (e.g. python developer): ")
		if err != nil {
			return q, err
		}
		if keywords == "" {
			fmt.Fprintln(a.out, "Keywords are required.")
		}
		q.Keywords = keywords
	}

	location, err := a.ask("Location (leave empty for anywhere): ")
	if err != nil && !errors.Is(err, ErrInputClosed) {
		return q, err
	}
	q.Location = location

	return q, nil
}

func (a *App) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if !a.scanner.Scan() {
		fmt.Fprintln(a.out)
		if err := a.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(a.scanner.Text()), nil
}
