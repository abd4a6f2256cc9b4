package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	debug    bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hindsight",
	Short: "Hindsight - historical trading strategy simulator",
	Long: `Hindsight replays daily price history through a trading strategy and
reports what the strategy would have earned. It ships a trend-following
and a mean-reversion strategy and records every simulated trade.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
