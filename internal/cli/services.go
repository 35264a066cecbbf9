package cli

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/spf13/cobra"
)

var servicesCmd = &cobra.Command{
	Use:   "services <project>",
	Short: "List the services of a project",
	Long: `List the services of a project as recorded in their stack manifests.

Examples:
  projctl services myapp
  projctl services myapp --json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runServices,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}

type serviceListItem struct {
	Name   string   `json:"name"`
	Port   int      `json:"port"`
	Domain string   `json:"domain"`
	Image  string   `json:"image"`
	Env    []string `json:"env,omitempty"`
}

func newServiceListItem(proj project.ProjectSpec, svc project.ServiceSpec) serviceListItem {
	keys := make([]string, 0, len(svc.Env))
	for k := range svc.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return serviceListItem{
		Name:   svc.Name,
		Port:   svc.Port,
		Domain: svc.EffectiveDomain(proj.Domain),
		Image:  svc.EffectiveImage(),
		Env:    keys,
	}
}

func runServices(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, services, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}

	items := make([]serviceListItem, 0, len(services))
	for _, svc := range services {
		items = append(items, newServiceListItem(proj, svc))
	}

	if jsonOutput {
		return output.JSON(items)
	}

	if len(items) == 0 {
		output.Info("Project %s has no services", proj.Name)
		return nil
	}

	output.Table([]string{"NAME", "PORT", "DOMAIN", "IMAGE", "ENV"}, serviceRows(items))
	return nil
}

func serviceRows(items []serviceListItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		env := "-"
		if len(item.Env) > 0 {
			env = strings.Join(item.Env, ",")
		}
		rows = append(rows, []string{
			item.Name,
			strconv.Itoa(item.Port),
			item.Domain,
			item.Image,
			env,
		})
	}
	return rows
}
