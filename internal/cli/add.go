package cli

import (
	"os"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	serviceImage string
	serviceEnv   string
)

var addServiceCmd = &cobra.Command{
	Use:     "add-service <project> <name> <port> [domain]",
	Aliases: []string{"add"},
	Short:   "Add a service to a project",
	Long: `Add a service to a project. This writes the service's Nginx config,
stack manifest and deploy script, and regenerates the project vhost.

The domain defaults to the project domain and the image to <name>:latest.
Adding a service that already exists replaces its files.

Examples:
  projctl add-service myapp api 3000
  projctl add-service myapp web 8080 www.example.com
  projctl add-service myapp api 3000 --image registry.example.com/api:1.4
  projctl add-service myapp api 3000 --env-file api.env`,
	Args: usageArgs(cobra.RangeArgs(3, 4)),
	RunE: runAddService,
}

func init() {
	addServiceCmd.Flags().StringVar(&serviceImage, "image", "", "Container image (default <name>:latest)")
	addServiceCmd.Flags().StringVar(&serviceEnv, "env-file", "", "Dotenv file with the service environment")

	rootCmd.AddCommand(addServiceCmd)
}

func runAddService(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, existing, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}

	svc := project.ServiceSpec{
		Name:  args[1],
		Image: serviceImage,
	}
	if svc.Port, err = parsePort(args[2]); err != nil {
		return err
	}
	if len(args) == 4 {
		svc.Domain = args[3]
	}
	if serviceEnv != "" {
		if svc.Env, err = readEnvFile(serviceEnv); err != nil {
			return err
		}
	}

	for _, other := range scaffold.Conflicts(proj, svc, existing) {
		logger.WarnFields("domain claimed by more than one service", map[string]interface{}{
			"project": proj.Name,
			"service": svc.Name,
			"other":   other,
			"domain":  svc.EffectiveDomain(proj.Domain),
		})
		if !jsonOutput {
			output.Warn("Service %s already serves %s; nginx will use the first matching server block",
				other, svc.EffectiveDomain(proj.Domain))
		}
	}

	artifacts, err := e.scaffold.AddService(proj, svc, existing)
	if err != nil {
		return err
	}
	owners, err := e.registry.ProjectsWithService(svc.Name)
	if err != nil {
		return err
	}
	for _, owner := range owners {
		if owner != proj.Name {
			return errors.ServiceNameTaken(svc.Name, owner)
		}
	}

	if err := e.apply(artifacts); err != nil {
		return err
	}
	if err := e.removeStaleEnv(proj.Name, svc); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	if err := outputResult(
		map[string]interface{}{
			"success":  true,
			"project":  proj.Name,
			"service":  svc.Name,
			"port":     svc.Port,
			"domain":   svc.EffectiveDomain(proj.Domain),
			"image":    svc.EffectiveImage(),
			"manifest": e.cfg.ServiceManifest(proj.Name, svc.Name),
		},
		"Service %s added to %s (%s -> %s:%d)",
		svc.Name, proj.Name, svc.EffectiveDomain(proj.Domain), svc.Name, svc.Port,
	); err != nil {
		return err
	}
	if !jsonOutput {
		output.Info("Next: projctl deploy %s", proj.Name)
	}
	return nil
}

// removeStaleEnv deletes the env file left by an earlier add of svc when
// svc no longer has environment
func (e *env) removeStaleEnv(projectName string, svc project.ServiceSpec) error {
	path := e.cfg.ServiceEnv(projectName, svc.Name)
	if len(svc.Env) > 0 || !e.store.Exists(path) {
		return nil
	}
	if dryRun {
		if !jsonOutput {
			output.Info("rm %s", path)
		}
		return nil
	}
	logger.Debug("removing stale env file %s", path)
	return e.store.RemoveAll(path)
}

// readEnvFile parses a dotenv file given on the command line
func readEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapSubject(errors.ErrCodeNotFound, path, err)
	}
	defer f.Close()

	env, err := project.ParseEnv(f)
	if err != nil {
		return nil, errors.WrapSubject(errors.ErrCodeValidation, path, err)
	}
	return env, nil
}
