// Package cli is the command-line surface around the forum core. It owns
// all user-facing text; the core packages below it never format any.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"termforum/internal/config"
	"termforum/internal/logging"
	"termforum/internal/session"
	"termforum/internal/store"
)

// RootOptions hold global flags shared by all commands.
type RootOptions struct {
	DataDir  string
	LogLevel string
}

// NewRootCommand creates the termforum root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "termforum",
		Short:         "termforum - a terminal forum",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default $TERMFORUM_DATA_DIR or ~/.termforum)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newCategoriesCommand(opts))
	cmd.AddCommand(newThreadsCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newThreadCommand(opts))
	cmd.AddCommand(newReplyCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (o *RootOptions) dataDir() (string, error) {
	if o.DataDir != "" {
		return o.DataDir, nil
	}
	if dir := os.Getenv("TERMFORUM_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termforum"), nil
}

func (o *RootOptions) dbPath() (string, error) {
	dir, err := o.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "forum.db"), nil
}

func (o *RootOptions) sessionPath() (string, error) {
	dir, err := o.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func (o *RootOptions) configPath() (string, error) {
	dir, err := o.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// environment wires the explicitly-owned dependencies: preferences,
// logger, store, session manager.
type environment struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *store.Store
	sessions *session.Manager
}

func (o *RootOptions) openEnvironment() (*environment, error) {
	cfgPath, err := o.configPath()
	if err != nil {
		return nil, err
	}
	cfg, cfgErr := config.Load(cfgPath)

	level := cfg.LogLevel
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	logger, err := logging.New(logging.Options{Level: level, FilePath: cfg.LogPath})
	if err != nil {
		return nil, err
	}
	if cfgErr != nil {
		logger.Warn("preferences unreadable, using defaults", zap.Error(cfgErr))
	}

	dbPath, err := o.dbPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	sessPath, err := o.sessionPath()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &environment{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		sessions: session.NewManager(sessPath),
	}, nil
}

func (e *environment) close() {
	_ = e.store.Close()
	_ = e.logger.Sync()
}
