package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"queryblast/internal/banner"
	"queryblast/internal/cli"
	"queryblast/internal/dummy"
	"queryblast/internal/pattern"
	"queryblast/internal/runner"
	"queryblast/internal/storage"
)

var (
	cfgFile string

	// CLI Flags
	url         string
	patternName string
	calls       int
	concurrency int
	duration    int
	delayMs     int
	mode        string
	timeout     int
	outPrefix   string
	jsonOut     bool
	plain       bool
)

var rootCmd = &cobra.Command{
	Use:   "queryblast",
	Short: "queryblast - query endpoint load generator",
	Long: fmt.Sprintf(`
queryblast hammers a remote query endpoint with controlled concurrency and
summarizes performance: latency percentiles, throughput, latency buckets,
and a shared-vs-fresh connection comparison mode.

Patterns: %v`, pattern.Names()),
	RunE: func(cmd *cobra.Command, args []string) error {
		if url == "" {
			url = viper.GetString("url")
		}

		cfg := runner.Config{
			URL:         url,
			Pattern:     patternName,
			TotalCalls:  calls,
			Concurrency: concurrency,
			Duration:    time.Duration(duration) * time.Second,
			Delay:       time.Duration(delayMs) * time.Millisecond,
			Mode:        mode,
			Timeout:     time.Duration(timeout) * time.Second,
			OutPrefix:   outPrefix,
		}

		opts := cli.Options{
			Config: cfg,
			Live:   !plain && !jsonOut && mode != runner.ModeBoth,
			JSON:   jsonOut,
		}
		return cli.Start(opts)
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd)
	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.queryblast.yaml)")

	rootCmd.Flags().StringVarP(&url, "url", "u", "", "Query endpoint URL")
	rootCmd.Flags().StringVarP(&patternName, "pattern", "p", "medium", "Query pattern (result size policy)")
	rootCmd.Flags().IntVarP(&calls, "calls", "n", 100, "Total calls to issue")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 10, "Calls in flight per batch")
	rootCmd.Flags().IntVarP(&duration, "duration", "d", 0, "Time budget in seconds (overrides --calls)")
	rootCmd.Flags().IntVar(&delayMs, "delay", 0, "Pause between batches in ms (count mode only)")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", runner.ModeShared, "Connection mode: shared, fresh or both")
	rootCmd.Flags().IntVar(&timeout, "timeout", 30, "Per-call timeout in seconds")
	rootCmd.Flags().StringVarP(&outPrefix, "out", "o", "", "Output filename prefix for JSON export")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "Single-line progress instead of the live view")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".queryblast")
		}
	}
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// --- Dummy Subcommand ---

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local dummy query endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		dummy.Start(dummy.ServerConfig{Port: port})
		select {}
	},
}

// --- History Subcommand ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open()
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.List()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No stored runs.")
			return nil
		}

		for _, rec := range recs {
			fmt.Printf("%s  %-8s  %-7s  pattern=%-7s calls=%-6d qps=%-8.1f avg=%.1fms ok=%.1f%%\n",
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.ID[:8],
				rec.Report.Strategy,
				rec.Report.Pattern,
				rec.Report.TotalCalls,
				rec.Report.QPS,
				rec.Report.AvgLatency,
				rec.Report.SuccessRate,
			)
		}
		return nil
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "P", 8080, "Port to run the dummy server on")
}
