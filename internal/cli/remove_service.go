package cli

import (
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/ksyq12/projctl/internal/swarm"
	"github.com/spf13/cobra"
)

var (
	forceRemoveService bool
	keepService        bool
)

var removeServiceCmd = &cobra.Command{
	Use:     "remove-service <project> <service>",
	Aliases: []string{"rm-service"},
	Short:   "Remove a service from a project",
	Long: `Remove one service of a project: its swarm service, its Nginx config,
stack manifest, env file and deploy script. The project vhost is
regenerated without the service and Nginx is restarted.

Examples:
  projctl remove-service myapp api
  projctl remove-service myapp api --force
  projctl remove-service myapp api --keep-service`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runRemoveService,
}

func init() {
	removeServiceCmd.Flags().BoolVarP(&forceRemoveService, "force", "f", false, "Remove without confirmation")
	removeServiceCmd.Flags().BoolVar(&keepService, "keep-service", false, "Leave the swarm service running")

	rootCmd.AddCommand(removeServiceCmd)
}

func runRemoveService(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, existing, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	found := false
	for _, svc := range existing {
		if svc.Name == name {
			found = true
			break
		}
	}
	if !found {
		return errors.ServiceNotFound(proj.Name, name)
	}

	var paths []string
	for _, p := range e.scaffold.ServicePaths(proj.Name, name) {
		if e.store.Exists(p) {
			paths = append(paths, p)
		}
	}
	vhost := e.scaffold.RemoveService(proj, name, existing)

	if dryRun {
		var commands []string
		if !keepService {
			commands = append(commands, "docker service rm "+swarm.ServiceName(proj.Name, name))
		}
		for _, p := range paths {
			commands = append(commands, "rm -f "+p)
		}
		commands = append(commands, "docker service update --force "+e.cfg.NginxService)
		if jsonOutput {
			return output.JSON(map[string]interface{}{
				"commands": commands,
				"files":    artifactItems([]project.Artifact{vhost}),
			})
		}
		if err := printCommands(commands...); err != nil {
			return err
		}
		return printArtifacts([]project.Artifact{vhost})
	}

	if !forceRemoveService && !confirm("Remove service '%s' from project '%s'? [y/N]: ", name, proj.Name) {
		return cancelled("Removal cancelled")
	}

	stack := e.stack()
	removed := false
	if !keepService {
		progress("Removing service %s...", name)
		if removed, err = stack.RemoveService(proj.Name, name); err != nil {
			return err
		}
	}

	for _, p := range paths {
		logger.Debug("remove %s", p)
		if err := e.store.RemoveAll(p); err != nil {
			return err
		}
	}
	if err := store.Apply(e.store, []project.Artifact{vhost}); err != nil {
		return err
	}

	if err := stack.ReloadNginx(); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success":         true,
			"project":         proj.Name,
			"service":         name,
			"removed":         paths,
			"service_removed": removed,
		},
		"Service %s removed from %s", name, proj.Name,
	)
}
