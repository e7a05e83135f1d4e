package main

import (
	"fmt"
	"os"

	"github.com/de-tools/tco-atlas/pkg/metrics"
	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/de-tools/tco-atlas/pkg/server"
	"github.com/de-tools/tco-atlas/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the cost estimation web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	metrics.Init()

	a, err := app.New(ctx, *cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	logger.Info().
		Strs("targets", a.Calculator.Targets()).
		Bool("price_sync", a.Scheduler != nil).
		Msg("application initialized")

	return server.NewWebAPI(a.ServerConfig(logger)).Start()
}
