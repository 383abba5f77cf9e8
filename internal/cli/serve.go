package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/studyhub/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Open the database, apply pending migrations and serve the JSON API until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		srv, err := server.New(server.Config{
			Port:          cfg.Port,
			SessionSecret: cfg.SessionSecret,
			SecureCookies: !cfg.IsDevelopment(),
		}, logger, db)
		if err != nil {
			return err
		}

		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
