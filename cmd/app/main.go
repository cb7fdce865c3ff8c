package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"StockPulse/internal/di"
	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stockpulse",
		Short: "Per-item demand forecasting service",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// serveCmd runs the HTTP API and background workers until interrupted.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the forecasting API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			return app.Run()
		},
	}
}

// forecasts builds the read path for one-shot commands. Logging stays quiet
// so stdout only carries the JSON result.
func forecasts() (*usecase.ForecastUseCase, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging.Output = "stderr"
	cfg.Logging.Collector.Enabled = false
	return di.InitializeForecasts(cfg)
}

func forecastCmd() *cobra.Command {
	var (
		itemID int64
		model  string
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the next-month forecast of an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := forecasts()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			f, err := u.NextMonth(ctx, itemID, models.NormalizeModelType(model))
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("item %d has no sales history", itemID)
			}
			return printJSON(f)
		},
	}
	cmd.Flags().Int64Var(&itemID, "item", 0, "item ID")
	cmd.Flags().StringVar(&model, "model", string(models.DefaultModelType()), "model: linear, forest or svm")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func projectCmd() *cobra.Command {
	var itemID int64
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the 12-month projection of an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := forecasts()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			p, err := u.Projection(ctx, itemID)
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	cmd.Flags().Int64Var(&itemID, "item", 0, "item ID")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func reportCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print next-month forecasts for the whole catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := forecasts()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			rep, err := u.Report(ctx, models.NormalizeModelType(model))
			if err != nil {
				return err
			}
			return printJSON(rep)
		},
	}
	cmd.Flags().StringVar(&model, "model", string(models.DefaultModelType()), "model: linear, forest or svm")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
