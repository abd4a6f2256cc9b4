package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oturner/hindsight/internal/logger"
	"github.com/oturner/hindsight/internal/portfolio"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the trades of the last recorded run",
	Long:  "Read the archived trade ledger and print each trade with its return",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug, logLevel)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	storage, err := buildArchive(cfg)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	data, err := storage.Read(cmd.Context(), cfg.Output.TradesPath)
	if err != nil {
		return fmt.Errorf("reading trades from %s: %w", cfg.Output.TradesPath, err)
	}

	var trades []portfolio.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return fmt.Errorf("decoding trades: %w", err)
	}

	printTrades(trades)
	return nil
}

func printTrades(trades []portfolio.Trade) {
	fmt.Printf("%-8s %-12s %10s %-12s %10s %9s\n",
		"SYMBOL", "BOUGHT", "PRICE", "SOLD", "PRICE", "RETURN")

	var wins, closed int
	for _, trade := range trades {
		if trade.IsOpen() {
			fmt.Printf("%-8s %-12s %10.3f %-12s %10s %9s\n",
				trade.Symbol, trade.BuyDate, trade.BuyPrice, "open", "-", "-")
			continue
		}
		closed++
		if trade.IsWin() {
			wins++
		}
		fmt.Printf("%-8s %-12s %10.3f %-12s %10.3f %8.2f%%\n",
			trade.Symbol, trade.BuyDate, trade.BuyPrice,
			trade.SellDate, trade.SellPrice, trade.Return())
	}

	fmt.Printf("\n%d trades, %d closed, %d won", len(trades), closed, wins)
	if closed > 0 {
		fmt.Printf(" (%.1f%% win rate)", float64(wins)/float64(closed)*100)
	}
	fmt.Println()
}
