package cli

import (
	"time"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <name> <domain> [port]",
	Aliases: []string{"new"},
	Short:   "Create a new project",
	Long: `Create a new project directory with its metadata, management script,
README and Nginx vhost. Until a service is added the vhost answers 503.

The port is the default for services added later and falls back to the
configured default_port.

Examples:
  projctl create myapp myapp.example.com
  projctl create myapp myapp.example.com 8080
  projctl create myapp myapp.example.com --dry-run`,
	Args: usageArgs(cobra.RangeArgs(2, 3)),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	spec := project.ProjectSpec{
		Name:        args[0],
		Domain:      args[1],
		DefaultPort: e.cfg.DefaultPort,
		CreatedAt:   deps.Clock.Now().UTC().Truncate(time.Second),
	}
	if len(args) == 3 {
		if spec.DefaultPort, err = parsePort(args[2]); err != nil {
			return err
		}
	}

	if err := spec.Validate(); err != nil {
		return err
	}
	if e.registry.Exists(spec.Name) {
		return errors.ProjectExists(spec.Name)
	}

	artifacts, err := e.scaffold.CreateProject(spec)
	if err != nil {
		return err
	}
	if err := e.apply(artifacts); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	dir := e.cfg.ProjectDir(spec.Name)
	if err := outputResult(
		map[string]interface{}{
			"success":      true,
			"project":      spec.Name,
			"domain":       spec.Domain,
			"default_port": spec.DefaultPort,
			"path":         dir,
			"vhost":        e.cfg.ProjectVhost(spec.Name),
		},
		"Project %s created at %s", spec.Name, dir,
	); err != nil {
		return err
	}
	if !jsonOutput {
		output.Info("Next: projctl add-service %s <service> <port>", spec.Name)
	}
	return nil
}
