package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raykavin/mirrortrade/config"
	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/exchange/binance"
	"github.com/raykavin/mirrortrade/logger"
	"github.com/raykavin/mirrortrade/logger/zerolog"
	"github.com/raykavin/mirrortrade/notification"
	"github.com/raykavin/mirrortrade/storage"
	"github.com/raykavin/mirrortrade/trader"
)

// Command line flags
var (
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mirrortrade",
		Short:   "Correlation-gated trailing stop trading bot",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (e.g. ./mirrortrade.yml)")

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute a single trading run and print the report",
		RunE:  runOnce,
	}
}

func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP trigger server",
		RunE:  runServe,
	}
}

func runOnce(cmd *cobra.Command, args []string) error {
	app, err := initializeApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.Trader.Run(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := initializeApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, app)
}

// App holds the wired application dependencies
type App struct {
	Config   *config.AppConfig
	Log      logger.Logger
	Exchange core.Exchange
	Storage  *storage.BuntStorage
	Trader   *trader.Trader
}

// Close releases the app resources
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Log.WithError(err).Warn("failed to close order storage")
		}
	}
}

// initializeApp loads the configuration and wires the exchange,
// notifier, storage and trader together
func initializeApp() (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := zerolog.New(cfg.Log.Level, "2006-01-02 15:04:05", cfg.Log.Colored, cfg.Log.JSONFormat)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	options := []binance.FuturesOption{
		binance.WithFuturesCredentials(cfg.Binance.APIKey, cfg.Binance.SecretKey),
	}
	if cfg.Binance.UseTestnet {
		options = append(options, binance.WithFuturesTestnet())
	}
	exchange, err := binance.NewFutures(context.Background(), log, options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to the exchange: %w", err)
	}

	var notifier core.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = notification.NewTelegram(cfg.Telegram.Token, cfg.Telegram.Users, log)
		if err != nil {
			return nil, fmt.Errorf("initializing telegram: %w", err)
		}
	} else {
		notifier = notification.NewNoop(log)
	}

	orderStorage, err := storage.FromMemory()
	if err != nil {
		return nil, fmt.Errorf("initializing order storage: %w", err)
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Exchange: exchange,
		Storage:  orderStorage,
		Trader:   trader.New(exchange, orderStorage, notifier, log, cfg.Trading),
	}, nil
}
