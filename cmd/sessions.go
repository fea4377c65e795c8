package cmd

import (
	"fmt"
	"time"

	"ccmeter/internal/cli"
	"ccmeter/internal/pipeline"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Recent billing windows",
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	sessions, err := engine.RecentSessions(flagProject)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("\n  No sessions in the last 12 hours.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BILLING WINDOWS  Last 12h"))
	fmt.Println()

	now := time.Now()
	rows := make([][]string, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		remaining := "expired"
		if mins := pipeline.MinutesUntilReset(s, now); mins > 0 {
			remaining = cli.FormatDuration(int64(mins) * 60)
		}
		rows = append(rows, []string{
			s.StartTime.Local().Format("Jan 02 15:04"),
			s.EndTime.Local().Format("15:04"),
			cli.FormatNumber(int64(len(s.Events))),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatCost(s.TotalCost),
			remaining,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Start", "End", "Events", "Tokens", "Cost", "Resets"},
		Rows:    rows,
	}))

	return nil
}
