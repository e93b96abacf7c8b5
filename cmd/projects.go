package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/prism/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "List projects",
	Long:    `Lists the configured projects with their task store, title image, and task count.`,
	RunE:    runProjects,
}

var projectsUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Select the active project",
	Long:  `Makes NAME the project commands and the TUI open when --project is not given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsUse,
}

func init() {
	projectsCmd.AddCommand(projectsUseCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	active := ws.cfg.ActiveIndex()
	rows := make([]output.Project, len(ws.cfg.Projects))
	for i, p := range ws.cfg.Projects {
		tasks, err := ws.board(p).Tasks()
		if err != nil {
			return err
		}
		rows[i] = output.Project{
			Index:      i,
			Name:       p.Name,
			File:       ws.cfg.ProjectPath(p),
			TitleImage: ws.cfg.TitleImagePath(p),
			Active:     i == active,
			Tasks:      len(tasks),
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, rows)
	}
	output.ProjectTable(os.Stdout, rows)
	return nil
}

func runProjectsUse(_ *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	p, err := ws.cfg.Project(args[0])
	if err != nil {
		return err
	}
	ws.cfg.ActiveProject = p.Name
	if err := ws.cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"active_project": p.Name})
	}
	output.Messagef(os.Stdout, "Active project: %s", p.Name)
	return nil
}
