package cmd

import (
	"fmt"

	"ccmeter/internal/cli"

	"github.com/spf13/cobra"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Weekly usage table",
	RunE:  runWeekly,
}

var weeklyWeeks int

func init() {
	weeklyCmd.Flags().IntVarP(&weeklyWeeks, "weeks", "w", 4, "Number of weeks to report")
	rootCmd.AddCommand(weeklyCmd)
}

func runWeekly(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	weeks, err := engine.WeeklyReport(weeklyWeeks, flagProject)
	if err != nil {
		return err
	}
	if len(weeks) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WEEKLY USAGE  Last %dw", weeklyWeeks)))
	fmt.Println()

	rows := make([][]string, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, []string{
			w.WeekStart.Format("Jan 02") + " – " + w.WeekEnd.Format("Jan 02"),
			cli.FormatNumber(int64(w.Days)),
			cli.FormatNumber(int64(w.Events)),
			cli.FormatTokens(w.TotalTokens),
			cli.FormatCost(w.TotalCost),
			cli.FormatCost(w.DailyAverage) + "/d",
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Week", "Days", "Events", "Tokens", "Cost", "Avg"},
		Rows:    rows,
	}))

	return nil
}
