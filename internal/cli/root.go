// Package cli wires the studyhub command tree.
//
//	studyhub serve                      run the HTTP API
//	studyhub migrate                    apply database migrations and exit
//	studyhub students add <email>       register a student from the terminal
//	studyhub students list              show registered students
//
// Every command loads configuration first (PersistentPreRunE), so a missing
// session secret fails fast before anything touches the database.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/studyhub/internal/auth"
	"github.com/sakif/studyhub/internal/config"
	sqliteRepo "github.com/sakif/studyhub/internal/repository/sqlite"
	"github.com/sakif/studyhub/internal/service"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "studyhub",
	Short: "studyhub - student accounts and a question board",
	Long: `studyhub serves the JSON API behind the studyhub learning site:
student registration and login with signed session cookies, and a shared
board where students post questions and teachers answer them.

Configuration comes from an optional YAML file (--config) and STUDYHUB_*
environment variables. STUDYHUB_SESSION_SECRET is required.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger = newLogger(cmd.ErrOrStderr(), cfg.Level())
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); env vars STUDYHUB_* override it")
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openDB opens the configured database and brings its schema up to date.
// The data directory is created on first run.
func openDB(ctx context.Context) (*sqliteRepo.DB, error) {
	if cfg.DBPath != sqliteRepo.MemoryPath {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqliteRepo.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// newAuthService builds the same AuthService the HTTP server uses, so the
// CLI applies identical registration rules.
func newAuthService(db *sqliteRepo.DB) (*service.AuthService, error) {
	sessions, err := auth.NewSessionCodec(cfg.SessionSecret, !cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(db.Users(), auth.NewPasswordService(), sessions, logger), nil
}
