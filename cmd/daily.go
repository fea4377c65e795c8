package cmd

import (
	"fmt"

	"ccmeter/internal/cli"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	RunE:  runDaily,
}

var dailyDays int

func init() {
	dailyCmd.Flags().IntVarP(&dailyDays, "days", "n", 7, "Number of days to report")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	days, err := engine.DailyReport(dailyDays, flagProject)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY USAGE  Last %dd", dailyDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Events)),
			cli.FormatTokens(d.TotalTokens),
			cli.FormatCost(d.TotalCost),
			cli.FormatCost(d.CacheSavings),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Events", "Tokens", "Cost", "Saved"},
		Rows:    rows,
	}))

	return nil
}
