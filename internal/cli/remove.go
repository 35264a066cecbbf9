package cli

import (
	"github.com/spf13/cobra"
)

var (
	forceRemove bool
	keepStack   bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <project>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a project",
	Long: `Remove a project: its swarm stack, its directory and its Nginx
configuration. Nginx is restarted afterwards.

The first failing step stops the removal; nothing is rolled back.

Examples:
  projctl remove myapp
  projctl rm myapp --force
  projctl remove myapp --keep-stack`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().BoolVar(&keepStack, "keep-stack", false, "Leave the swarm stack running")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, err := e.registry.LoadProject(args[0])
	if err != nil {
		return err
	}

	paths := []string{
		e.cfg.ServiceConfDir(proj.Name),
		e.cfg.ProjectVhost(proj.Name),
		e.cfg.ProjectDir(proj.Name),
	}

	if dryRun {
		var commands []string
		if !keepStack {
			commands = append(commands, "docker stack rm "+proj.Name)
		}
		for _, p := range paths {
			commands = append(commands, "rm -rf "+p)
		}
		return printCommands(append(commands, "docker service update --force "+e.cfg.NginxService)...)
	}

	// Confirm removal if not forced
	if !forceRemove && !confirm("Are you sure you want to remove project '%s' and all its files? [y/N]: ", proj.Name) {
		return cancelled("Removal cancelled")
	}

	stack := e.stack()
	if !keepStack {
		progress("Removing stack %s...", proj.Name)
		if err := stack.Remove(proj.Name); err != nil {
			return err
		}
	}

	progress("Removing project files...")
	if err := e.registry.RemoveProject(proj.Name); err != nil {
		return err
	}

	if err := stack.ReloadNginx(); err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success": true,
			"project": proj.Name,
			"removed": paths,
		},
		"Project %s removed", proj.Name,
	)
}
