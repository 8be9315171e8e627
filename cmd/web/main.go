package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/bootstrap"
	"github.com/de-tools/ledger-sync/pkg/server"
	"github.com/de-tools/ledger-sync/pkg/services/config"
)

var (
	cfgPath      string
	profilesPath string
	profile      string
	schedule     bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for ledger-sync",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file (yaml, toml or json)")
	rootCmd.Flags().StringVar(&profilesPath, "profiles", config.DefaultProfilePath(),
		"Path to the company profile registry (default is $HOME/.ledgersynccfg)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "Company profile name")
	rootCmd.Flags().BoolVar(&schedule, "schedule", false, "Start the polling schedule with the configured interval")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if profile != "" {
		settings.Host.Profile = profile
	}

	level, err := zerolog.ParseLevel(settings.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.Log.Level, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	app, err := bootstrap.New(ctx, settings, bootstrap.Options{ProfilePath: profilesPath})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close(ctx)

	logger.Info().Msgf("Found %d reports in the catalog", len(app.Catalog.List()))

	if schedule {
		if err := app.Controller.Start(ctx, settings.Schedule.IntervalMinutes); err != nil {
			return fmt.Errorf("failed to start schedule: %w", err)
		}
	}

	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = settings.Server.Host
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = settings.Server.Port
	}

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Controller:      app.Controller,
			Catalog:         app.Catalog,
			Runs:            app.Runs,
			Baselines:       app.Baselines,
			Exchanges:       app.Exchanges,
			DefaultInterval: settings.Schedule.IntervalMinutes,
			Logger:          logger,
		},
	})

	return api.Start()
}
