// Package cmd wires the monitor engine to cobra subcommands. Commands
// only fetch and render; all analysis lives in internal packages.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ccmeter/internal/config"
	"ccmeter/internal/monitor"
	"ccmeter/internal/source"
	"ccmeter/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagProject string
	flagPlan    string
)

var rootCmd = &cobra.Command{
	Use:   "ccmeter",
	Short: "Claude Code usage and cost meter",
	Long:  "Reconstruct billing sessions from Claude Code logs and report token usage, costs, and cache savings.",
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runStatus

	homeDir, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(homeDir, ".claude", "projects")

	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", defaultDataDir, "Claude projects directory")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Filter to one project")
	rootCmd.PersistentFlags().StringVar(&flagPlan, "plan", "", "Subscription plan (Free, Pro, Max5, Max20, Team)")
}

// newEngine builds the shared engine used by every command. The config
// file fills in whatever the flags leave unset.
func newEngine() (*monitor.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Config unreadable, using defaults: %v\n", err)
	}

	dataDir := flagDataDir
	if cfg.General.DataDir != "" && !rootCmd.PersistentFlags().Changed("data-dir") {
		dataDir = cfg.General.DataDir
	}
	planName := cfg.General.Plan
	if flagPlan != "" {
		planName = flagPlan
	}

	pricing := config.NewPricing(cfg.Tiers())
	ingester, err := source.New(dataDir, pricing)
	if err != nil {
		return nil, err
	}

	ttl := secondsOrDefault(cfg.Cache.TTLSeconds, 60)
	cache := store.New(ttl)
	go cache.Run(context.Background(), secondsOrDefault(cfg.Cache.SweepIntervalSeconds, 300))

	return monitor.New(ingester, pricing, config.PlanByName(planName), cache, ttl), nil
}

func secondsOrDefault(secs, fallback int) time.Duration {
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
