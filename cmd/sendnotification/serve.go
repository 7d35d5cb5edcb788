package main

import (
	"github.com/spf13/cobra"

	"github.com/donnex/sendnotification/internal/metrics"
	"github.com/donnex/sendnotification/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a small HTTP API that accepts notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		sender, closeStore, err := buildSender(cmd, app)
		if err != nil {
			return err
		}
		defer closeStore()

		if app.InfluxURL != "" {
			go metrics.StartPusher(cmd.Context(), app.InfluxURL, app.InfluxToken,
				app.InfluxOrg, app.InfluxBucket, app.InfluxInterval)
		}

		return server.New(app.Listen, sender).ListenAndServe(cmd.Context())
	},
}
