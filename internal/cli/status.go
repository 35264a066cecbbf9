package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/swarm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show the swarm state of a project's services",
	Long: `Show the replica state of every service of a project, as reported by
the Docker Engine API.

Examples:
  projctl status myapp
  projctl status myapp --json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runStatus,
}

var statusAllCmd = &cobra.Command{
	Use:   "status-all",
	Short: "Show the swarm state of every project",
	Long: `Show the replica state of the services of every project. A project
that cannot be read is reported and the others are still shown.

Examples:
  projctl status-all`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runStatusAll,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statusAllCmd)
}

// Service states
const (
	StateRunning     = "running"
	StateDegraded    = "degraded"
	StateNotDeployed = "not deployed"
	StateUnmanaged   = "unmanaged"
)

type statusItem struct {
	Project string `json:"project"`
	Service string `json:"service"`
	Swarm   string `json:"swarm_name"`
	Image   string `json:"image,omitempty"`
	Running uint64 `json:"running"`
	Desired uint64 `json:"desired"`
	State   string `json:"state"`
}

// projectStatus matches a project's services against the services of its
// stack. Stack services without a manifest are reported as unmanaged.
func projectStatus(ctx context.Context, client *swarm.Client, proj project.ProjectSpec, services []project.ServiceSpec) ([]statusItem, error) {
	running, err := client.StackServices(ctx, proj.Name)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]swarm.ServiceStatus, len(running))
	for _, st := range running {
		byName[st.Name] = st
	}

	items := make([]statusItem, 0, len(services))
	for _, svc := range services {
		name := swarm.ServiceName(proj.Name, svc.Name)
		item := statusItem{Project: proj.Name, Service: svc.Name, Swarm: name, State: StateNotDeployed}
		if st, ok := byName[name]; ok {
			item.Image = st.Image
			item.Running = st.Running
			item.Desired = st.Desired
			item.State = StateDegraded
			if st.Healthy() {
				item.State = StateRunning
			}
			delete(byName, name)
		}
		items = append(items, item)
	}

	for _, st := range running {
		if _, ok := byName[st.Name]; !ok {
			continue
		}
		items = append(items, statusItem{
			Project: proj.Name,
			Service: st.Service,
			Swarm:   st.Name,
			Image:   st.Image,
			Running: st.Running,
			Desired: st.Desired,
			State:   StateUnmanaged,
		})
	}
	return items, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, services, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}

	client, err := deps.SwarmFactory.Create()
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := projectStatus(commandContext(cmd), client, proj, services)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(items)
	}
	if len(items) == 0 {
		output.Info("Project %s has no services", proj.Name)
		return nil
	}
	printStatus(items)
	return nil
}

func runStatusAll(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	projects, err := e.registry.ListProjects()
	if err != nil {
		return err
	}

	client, err := deps.SwarmFactory.Create()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := commandContext(cmd)
	var result *multierror.Error
	items := make([]statusItem, 0)
	for _, proj := range projects {
		services, err := e.registry.ListServices(proj.Name)
		if err != nil {
			result = multierror.Append(result, errors.WrapSubject(errors.CodeOf(err), proj.Name, err))
			continue
		}
		projectItems, err := projectStatus(ctx, client, proj, services)
		if err != nil {
			result = multierror.Append(result, errors.WrapSubject(errors.CodeOf(err), proj.Name, err))
			continue
		}
		items = append(items, projectItems...)
	}

	if jsonOutput {
		if err := output.JSON(items); err != nil {
			return err
		}
	} else if len(items) == 0 {
		output.Info("No services found")
	} else {
		printStatus(items)
	}

	return result.ErrorOrNil()
}

func printStatus(items []statusItem) {
	headers := []string{"PROJECT", "SERVICE", "REPLICAS", "IMAGE", "STATE"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		replicas := "-"
		if item.State != StateNotDeployed {
			replicas = fmt.Sprintf("%d/%d", item.Running, item.Desired)
		}
		image := item.Image
		if image == "" {
			image = "-"
		}
		rows = append(rows, []string{item.Project, item.Service, replicas, image, item.State})
	}
	output.Table(headers, rows)
}
