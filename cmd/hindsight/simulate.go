package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oturner/hindsight/internal/archive"
	"github.com/oturner/hindsight/internal/backtest"
	"github.com/oturner/hindsight/internal/config"
	"github.com/oturner/hindsight/internal/core"
	"github.com/oturner/hindsight/internal/dates"
	"github.com/oturner/hindsight/internal/logger"
	"github.com/oturner/hindsight/internal/marketdata"
	"github.com/oturner/hindsight/internal/store"
	"github.com/oturner/hindsight/internal/strategy"
	"github.com/oturner/hindsight/internal/strategy/meanrev"
	"github.com/oturner/hindsight/internal/strategy/trend"
)

var (
	simulateFrom     string
	simulateTo       string
	simulateStrategy string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a strategy against historical data",
	Long:  "Replay the configured date range day by day and report performance statistics",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateFrom, "from", "", "Start date YYYY-MM-DD (overrides config)")
	simulateCmd.Flags().StringVar(&simulateTo, "to", "", "End date YYYY-MM-DD (overrides config)")
	simulateCmd.Flags().StringVar(&simulateStrategy, "strategy", "", "Strategy name: trend or meanrev (overrides config)")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug, logLevel)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if simulateFrom != "" {
		cfg.Simulation.StartDate = simulateFrom
	}
	if simulateTo != "" {
		cfg.Simulation.EndDate = simulateTo
	}
	if simulateStrategy != "" {
		cfg.Strategy.Name = simulateStrategy
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stocks, err := loadStocks(cfg, log)
	if err != nil {
		return err
	}

	strat, err := buildStrategy(cfg)
	if err != nil {
		return err
	}
	sizer := buildSizer(cfg)

	start, _ := dates.Parse(cfg.Simulation.StartDate)
	end, _ := dates.Parse(cfg.Simulation.EndDate)

	sim := backtest.New(backtest.Config{
		Balance:      cfg.Simulation.Balance,
		BuyAmount:    cfg.Simulation.BuyAmount,
		CooldownDays: cfg.Simulation.CooldownDays,
		StartDate:    start,
		EndDate:      end,
		Unwind:       backtest.UnwindPolicy(cfg.Simulation.Unwind),
	}, strat, sizer, log)

	sim.OnDay(func(date time.Time, day, total int) {
		fmt.Printf("\rSimulating %s (%d/%d)", dates.Format(date), day, total)
	})

	fmt.Printf("=== Hindsight Simulation ===\n")
	fmt.Printf("Strategy: %s\n", strat.Name())
	fmt.Printf("Period:   %s to %s\n", cfg.Simulation.StartDate, cfg.Simulation.EndDate)
	fmt.Printf("Stocks:   %d\n\n", len(stocks))

	result, err := sim.Run(ctx, stocks)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printStats(result.Stats)

	if err := saveArtifacts(ctx, cfg, result, log); err != nil {
		return err
	}
	return recordRun(cfg, result, log)
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func buildStrategy(cfg *config.Config) (strategy.Strategy, error) {
	switch cfg.Strategy.Name {
	case "trend":
		return trend.New(
			cfg.Simulation.DaysToGoBack,
			cfg.Simulation.SellLossPercent,
			cfg.Simulation.SellGainPercent,
		), nil
	case "meanrev":
		return meanrev.New(
			cfg.Strategy.StepSize,
			cfg.Strategy.DeviationScale,
			cfg.Strategy.MinGainPercent,
		), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy.Name)
	}
}

func buildSizer(cfg *config.Config) strategy.Sizer {
	if cfg.Strategy.Sizer == "noop" {
		return strategy.NoopSizer{}
	}
	return strategy.RiskFactoredSizer{}
}

func buildArchive(cfg *config.Config) (archive.Storage, error) {
	switch cfg.Output.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Output.Archive.S3.Bucket,
			Endpoint:  cfg.Output.Archive.S3.Endpoint,
			Region:    cfg.Output.Archive.S3.Region,
			AccessKey: cfg.Output.Archive.S3.AccessKey,
			SecretKey: cfg.Output.Archive.S3.SecretKey,
			Prefix:    cfg.Output.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Output.Archive.Path)
	}
}

func saveArtifacts(ctx context.Context, cfg *config.Config, result *backtest.Result, log *zap.Logger) error {
	storage, err := buildArchive(cfg)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	trades, err := json.MarshalIndent(result.Portfolio.Trades, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding trades: %w", err)
	}
	if err := storage.Write(ctx, cfg.Output.TradesPath, trades); err != nil {
		return fmt.Errorf("writing trades: %w", err)
	}

	stats, err := json.MarshalIndent(result.Stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := storage.Write(ctx, statsPath(cfg), stats); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}

	log.Info("saved run artifacts",
		zap.String("trades", cfg.Output.TradesPath),
		zap.Int("count", len(result.Portfolio.Trades)),
	)
	return nil
}

func recordRun(cfg *config.Config, result *backtest.Result, log *zap.Logger) error {
	if cfg.Output.SQLitePath == "" {
		return nil
	}
	recorder, err := store.NewSQLiteRecorder(cfg.Output.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening run database: %w", err)
	}
	defer recorder.Close()

	err = recorder.RecordRun(&store.RunRecord{
		Strategy:     result.Strategy,
		StartDate:    dates.Format(result.StartDate),
		EndDate:      dates.Format(result.EndDate),
		FinalBalance: result.Stats.FinalBalance,
		TotalReturn:  result.Stats.TotalReturn,
		AnnualReturn: result.Stats.AnnualReturn,
		WinRate:      result.Stats.WinRate,
		Trades:       result.Portfolio.Trades,
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	log.Info("recorded run", zap.String("db", cfg.Output.SQLitePath))
	return nil
}

// statsPath places the stats artifact next to the trade ledger.
func statsPath(cfg *config.Config) string {
	return path.Join(path.Dir(cfg.Output.TradesPath), "stats.json")
}

func printStats(stats backtest.Stats) {
	fmt.Println("=== Results ===")
	fmt.Printf("Final balance: %.2f\n", stats.FinalBalance)
	fmt.Printf("Total return:  %.2f%%\n", stats.TotalReturn)
	fmt.Printf("Annual return: %.2f%%\n", stats.AnnualReturn)
	fmt.Printf("Trades:        %d (%d won, %d lost)\n",
		stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)
	fmt.Printf("Win rate:      %.1f%%\n", stats.WinRate)
	fmt.Printf("Max drawdown:  %.2f%%\n", stats.MaxDrawdown)
	fmt.Printf("Sharpe ratio:  %.2f\n", stats.SharpeRatio)
	fmt.Println()
}

func loadStocks(cfg *config.Config, log *zap.Logger) ([]core.Stock, error) {
	loader := marketdata.NewLoader(cfg.Data.Listings, cfg.Data.HistoryDir, log)
	stocks, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading market data: %w", err)
	}
	if len(stocks) == 0 {
		return nil, fmt.Errorf("no usable stocks under %s", cfg.Data.HistoryDir)
	}
	return stocks, nil
}
