package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	sendnotification "github.com/donnex/sendnotification"
	"github.com/donnex/sendnotification/internal/config"
	"github.com/donnex/sendnotification/internal/interval"
	"github.com/donnex/sendnotification/internal/logging"
	"github.com/donnex/sendnotification/internal/metrics"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sendnotification [message]",
	Short: "Send a notification through the first configured service that accepts it",
	Args:  cobra.MinimumNArgs(1),
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

		window, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}

		message := strings.Join(args, " ")
		status, err := sender.Send(cmd.Context(), message, window)

		// short-lived process: report counters before exiting
		if ierr := metrics.PushOnce(cmd.Context(), app.InfluxURL, app.InfluxToken,
			app.InfluxOrg, app.InfluxBucket); ierr != nil {
			logging.Get().Warn().Err(ierr).Msg("metrics push failed")
		}

		if err != nil {
			return err
		}
		if status == sendnotification.StatusSuppressed {
			fmt.Println("notification suppressed, interval has not passed")
		} else {
			fmt.Println("notification sent")
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the services config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Printf("config valid: %s (services: %s)\n", path, strings.Join(cfg.Services, ", "))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sendnotification %s\n", version)
	},
}

// setup loads runtime settings (defaults, optional YAML file, env, flags)
// and initializes logging. Returned cleanup closes the log file.
func setup(cmd *cobra.Command) (*config.App, func(), error) {
	app := config.DefaultApp()

	if path, _ := cmd.Flags().GetString("app-config"); path != "" {
		loaded, err := config.LoadApp(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load app config: %w", err)
		}
		app = loaded
	}
	if err := config.ApplyEnvOverrides(app); err != nil {
		return nil, nil, err
	}
	// flags have highest precedence
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		app.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		app.LogFile = v
	}

	cleanup, err := logging.Init(app.LogFile, app.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// buildSender assembles the Sender with the configured interval store. The
// returned func closes the store.
func buildSender(cmd *cobra.Command, app *config.App) (*sendnotification.Sender, func(), error) {
	opts := []sendnotification.Option{
		sendnotification.WithSMTPAddr(app.SMTPAddr),
		sendnotification.WithHTTPTimeout(app.HTTPTimeout),
		sendnotification.WithPushoverRetries(app.PushoverRetries),
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, sendnotification.WithConfigFile(path))
	}

	closeStore := func() {}
	switch app.Store.Backend {
	case "redis":
		store := interval.NewRedisStore(app.Store.RedisAddr, app.Store.RedisDB)
		opts = append(opts, sendnotification.WithStore(store))
		closeStore = func() { _ = store.Close() }
	case "sqlite":
		path := app.Store.SQLitePath
		if path == "" {
			cache, err := os.UserCacheDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolve cache directory: %w", err)
			}
			path = filepath.Join(cache, "sendnotification", "interval.db")
		}
		store, err := interval.OpenSQLiteStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open interval store: %w", err)
		}
		opts = append(opts, sendnotification.WithStore(store))
		closeStore = func() { _ = store.Close() }
	case "", "none":
		// no store, interval suppression disabled
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", app.Store.Backend)
	}

	sender, err := sendnotification.New(opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return sender, closeStore, nil
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to services config file (default ~/.sendnotification)")
	cmd.Flags().String("app-config", "", "Path to runtime config file (YAML)")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-file", "", "Also write logs to this file")
}

func main() {
	addCommonFlags(rootCmd)
	rootCmd.Flags().DurationP("interval", "i", 0, "Suppress identical notifications within this window (e.g. 1h)")

	addCommonFlags(serveCmd)

	validateCmd.Flags().StringP("config", "c", "", "Path to services config file")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
