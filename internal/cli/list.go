package cli

import (
	"strconv"

	"github.com/ksyq12/projctl/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	Long: `List every project under the projects directory.

Examples:
  projctl list
  projctl ls
  projctl list --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type projectListItem struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	DefaultPort int    `json:"default_port"`
	Services    int    `json:"services"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	projects, err := e.registry.ListProjects()
	if err != nil {
		return err
	}

	items := make([]projectListItem, 0, len(projects))
	for _, p := range projects {
		services, err := e.registry.ListServices(p.Name)
		if err != nil {
			output.Warn("Could not read services of %s: %v", p.Name, err)
		}
		item := projectListItem{
			Name:        p.Name,
			Domain:      p.Domain,
			DefaultPort: p.DefaultPort,
			Services:    len(services),
		}
		if !p.CreatedAt.IsZero() {
			item.CreatedAt = p.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		items = append(items, item)
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("No projects in %s", e.cfg.ProjectsDir)
		return nil
	}

	headers := []string{"NAME", "DOMAIN", "PORT", "SERVICES", "CREATED"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Name,
			item.Domain,
			strconv.Itoa(item.DefaultPort),
			strconv.Itoa(item.Services),
			item.CreatedAt,
		})
	}

	output.Table(headers, rows)
	return nil
}
