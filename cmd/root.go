// Package cmd defines and implements the CLI commands for the vacantes executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/app"
	"github.com/JakeFAU/occ-vacantes/internal/config"
	"github.com/JakeFAU/occ-vacantes/internal/logging"
	"github.com/JakeFAU/occ-vacantes/internal/search"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is what the subcommands need from the service container. Tests inject
// a fake through newApp.
type App interface {
	Close() error
	Config() config.Config
	Logger() *zap.Logger
	Search(ctx context.Context, term string) search.Outcome
	Handler() http.Handler
}

// newApp is the application factory. It is a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

// loadConfig is swapped in tests to avoid touching the environment.
var loadConfig = config.Load

// rootCmd pairs the cobra tree with the App it builds, so the App can be
// closed even when a subcommand fails.
type rootCmd struct {
	*cobra.Command
	app App
}

func newRootCmd() *rootCmd {
	var cfgFile string
	root := &rootCmd{}

	root.Command = &cobra.Command{
		Use:   "vacantes",
		Short: "Searches OCC Mundial job listings and exports them.",
		Long: `vacantes scrapes the OCC Mundial listing pages for a search term and
writes the results as JSON, CSV, XLSX, and PDF files. It runs either as an
HTTP service (serve) or as a one-shot search (search).`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			root.app = appInstance
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSearchCmd())
	return root
}

// run executes the command tree and then releases the App.
func (r *rootCmd) run(ctx context.Context) error {
	err := r.ExecuteContext(ctx)
	if r.app != nil {
		closeErr := r.app.Close()
		_ = r.app.Logger().Sync()
		r.app = nil
		err = errors.Join(err, closeErr)
	}
	return err
}

func resolveApp(ctx context.Context) (App, error) {
	if ctx == nil {
		return nil, errors.New("application context is not initialized")
	}
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application is not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "vacantes:", err)
		os.Exit(1)
	}
}
