package cmd

import (
	"fmt"

	"ccmeter/internal/cli"

	"github.com/spf13/cobra"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly usage and plan comparison",
	RunE:  runMonthly,
}

var monthlyMonths int

func init() {
	monthlyCmd.Flags().IntVarP(&monthlyMonths, "months", "m", 3, "Number of months to report")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	months, err := engine.MonthlyReport(monthlyMonths, flagProject)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY USAGE  Last %dmo", monthlyMonths)))
	fmt.Println()

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			fmt.Sprintf("%s %d", m.Month.String()[:3], m.Year),
			cli.FormatNumber(int64(m.Events)),
			cli.FormatTokens(m.TotalTokens),
			cli.FormatCost(m.APIEquivalentCost),
			cli.FormatCost(m.PlanCost),
			cli.FormatDelta(m.APIEquivalentCost, m.PlanCost),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Events", "Tokens", "API equiv", "Plan", "Savings"},
		Rows:    rows,
	}))

	return nil
}
