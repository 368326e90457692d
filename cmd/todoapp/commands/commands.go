package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frezix0/TodoReact/internal/app"
	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/server"
	"github.com/frezix0/TodoReact/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewRootCommand creates the todoapp command tree.
func NewRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "todoapp",
		Short:        "Todo API server and terminal client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", model.DefaultConfigPath(), "config file path")

	load := func() (*model.AppConfig, string, error) {
		cfg, err := model.LoadConfig(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, configFile, nil
	}

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newTUICommand(load),
		newHealthCommand(load),
	)
	return root
}

// configLoader loads the configuration and reports the file it came from.
type configLoader func() (*model.AppConfig, string, error)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			log, closeLog, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			srv := server.New(*cfg, st, log)
			errCh := make(chan error, 1)
			go func() {
				log.WithFields(logrus.Fields{
					"driver":  st.Driver(),
					"version": cfg.App.Version,
				}).Info("starting")
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			defer st.Close()

			if v, err := st.SchemaVersion(); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", st.Driver(), v)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", st.Driver())
			return nil
		},
	}
}

func newTUICommand(load configLoader) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := load()
			if err != nil {
				return err
			}

			// The terminal owns stdout and stderr while the program runs.
			logCfg := cfg.Log
			logCfg.Output = logFile
			log, closeLog, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			defer closeLog()

			p := tea.NewProgram(app.NewFromConfig(*cfg, path, log), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running tui: %w", err)
			}
			return nil
		},
	}

	defaultLog := filepath.Join(filepath.Dir(model.DefaultConfigPath()), "tui.log")
	cmd.Flags().StringVar(&logFile, "log-file", defaultLog, "log file for the terminal client")
	return cmd
}

func newHealthCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}

			gw := gateway.New(cfg.API.BaseURL, gateway.WithTimeout(cfg.API.Timeout))
			h, err := gw.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", cfg.API.BaseURL, gateway.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %s)\n", cfg.API.BaseURL, h.Status, h.Version)
			return nil
		},
	}
}
