package cli

import (
	"strings"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <project>",
	Short: "Deploy a project to Docker Swarm",
	Long: `Deploy every service of a project as one swarm stack, then force the
Nginx service to restart so that it loads the new configuration.

The first failing docker command stops the deploy.

Examples:
  projctl deploy myapp
  projctl deploy myapp --dry-run`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runDeploy,
}

var deployAllCmd = &cobra.Command{
	Use:   "deploy-all",
	Short: "Deploy every project",
	Long: `Deploy the stack of every project that has services, then restart
the Nginx service once. Projects without services are skipped.

Examples:
  projctl deploy-all`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runDeployAll,
}

func init() {
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(deployAllCmd)
}

// deployPlan is one stack deploy
type deployPlan struct {
	Project   string   `json:"project"`
	Manifests []string `json:"manifests"`
}

func (p deployPlan) command() string {
	args := []string{"docker", "stack", "deploy"}
	for _, m := range p.Manifests {
		args = append(args, "-c", m)
	}
	return strings.Join(append(args, p.Project), " ")
}

func (e *env) plan(proj project.ProjectSpec, services []project.ServiceSpec) deployPlan {
	return deployPlan{Project: proj.Name, Manifests: e.registry.ManifestPaths(proj.Name, services)}
}

// runPlans deploys each plan in order and reloads nginx once
func (e *env) runPlans(plans []deployPlan) error {
	reload := "docker service update --force " + e.cfg.NginxService
	if dryRun {
		commands := make([]string, 0, len(plans)+2)
		commands = append(commands, "docker network inspect "+e.cfg.Network+
			" || docker network create --driver overlay --attachable "+e.cfg.Network)
		for _, p := range plans {
			commands = append(commands, p.command())
		}
		return printCommands(append(commands, reload)...)
	}

	stack := e.stack()
	created, err := stack.EnsureNetwork(e.cfg.Network)
	if err != nil {
		return err
	}
	if created && !jsonOutput {
		output.Info("Created overlay network %s", e.cfg.Network)
	}
	for _, p := range plans {
		if !jsonOutput {
			output.Info("Deploying %s (%d services)...", p.Project, len(p.Manifests))
		}
		if err := stack.Deploy(p.Project, p.Manifests...); err != nil {
			return err
		}
	}
	if !jsonOutput {
		output.Info("Reloading %s...", e.cfg.NginxService)
	}
	return stack.ReloadNginx()
}

func runDeploy(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, services, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return errors.InvalidSpecf("project %s has no services to deploy", proj.Name)
	}

	plan := e.plan(proj, services)
	if err := e.runPlans([]deployPlan{plan}); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	return outputResult(
		map[string]interface{}{
			"success":  true,
			"project":  proj.Name,
			"stack":    proj.Name,
			"services": len(services),
		},
		"Deployed %s: %d services in stack %s", proj.Name, len(services), proj.Name,
	)
}

func runDeployAll(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	projects, err := e.registry.ListProjects()
	if err != nil {
		return err
	}

	var plans []deployPlan
	for _, proj := range projects {
		services, err := e.registry.ListServices(proj.Name)
		if err != nil {
			return err
		}
		if len(services) == 0 {
			if !jsonOutput {
				output.Info("Skipping %s: no services", proj.Name)
			}
			continue
		}
		plans = append(plans, e.plan(proj, services))
	}

	if len(plans) == 0 {
		if jsonOutput {
			return output.JSON(map[string]interface{}{"success": true, "deployed": []string{}})
		}
		output.Info("Nothing to deploy")
		return nil
	}

	if err := e.runPlans(plans); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	deployed := make([]string, 0, len(plans))
	for _, p := range plans {
		deployed = append(deployed, p.Project)
	}
	return outputResult(
		map[string]interface{}{
			"success":  true,
			"deployed": deployed,
		},
		"Deployed %d projects", len(plans),
	)
}
