package cmd

import (
	"fmt"

	"ccmeter/internal/cli"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List known projects",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	projects, err := engine.Projects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("\n  No projects found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTS  %d found", len(projects))))
	fmt.Println()
	for _, p := range projects {
		fmt.Printf("  %s\n", truncate(p, 60))
	}
	fmt.Println()

	return nil
}
