package cmd

import (
	"fmt"

	"ccmeter/internal/cli"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Current session, today's totals, and alerts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	stats, err := engine.CurrentStats(flagProject)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CURRENT USAGE"))
	fmt.Println()

	if stats.CurrentSession == nil {
		fmt.Println("  No activity in the last 12 hours.")
	} else {
		s := stats.CurrentSession
		fmt.Printf("  Session window:  %s – %s\n",
			s.StartTime.Local().Format("Jan 02 15:04"),
			s.EndTime.Local().Format("15:04"))
		fmt.Printf("  Events:          %s\n", cli.FormatNumber(int64(len(s.Events))))
		fmt.Printf("  Tokens:          %s\n", cli.FormatTokens(s.TotalTokens))
		fmt.Printf("  Cost:            %s\n", cli.FormatCost(s.TotalCost))
		fmt.Printf("  Burn rate:       %d/min\n", stats.BurnRate)
		fmt.Printf("  Resets in:       %s\n", cli.FormatDuration(int64(stats.MinutesUntilReset)*60))
	}
	if stats.PreviousSession != nil {
		p := stats.PreviousSession
		fmt.Printf("  Previous window: %s  %s, %s\n",
			p.StartTime.Local().Format("Jan 02 15:04"),
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.TotalCost))
	}

	fmt.Println()
	fmt.Printf("  Today:           %s events, %s tokens, %s\n",
		cli.FormatNumber(int64(stats.TodayMessages)),
		cli.FormatTokens(stats.TodayTokens),
		cli.FormatCost(stats.TodayCost))
	fmt.Printf("  Sessions today:  %d\n", stats.SessionsStartedToday)
	fmt.Printf("  Plan:            %s ($%.0f/mo)\n", stats.Plan.Name, stats.Plan.MonthlyCost)

	for _, a := range stats.Alerts {
		fmt.Printf("  [%s] %s\n", a.Level, a.Message)
	}
	fmt.Println()

	return nil
}
