package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/input"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/registry"
	"github.com/ksyq12/projctl/internal/scaffold"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/ksyq12/projctl/internal/swarm"
	"github.com/spf13/cobra"
)

// env bundles everything a command needs after the config is loaded
type env struct {
	cfg      *config.Config
	store    store.Store
	registry *registry.Registry
	scaffold *scaffold.Scaffolder
}

// loadEnv loads the config and builds the store, registry and scaffolder
func loadEnv() (*env, error) {
	cfg, err := deps.ConfigLoader.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger.DebugFields("config loaded", cfg.Settings())

	s := deps.StoreFactory.Create(cfg.Root)
	return &env{
		cfg:      cfg,
		store:    s,
		registry: registry.New(cfg, s),
		scaffold: scaffold.New(cfg),
	}, nil
}

// stack returns the docker stack runner for this installation
func (e *env) stack() *swarm.Stack {
	return swarm.NewStack(deps.Executor, e.cfg.NginxService)
}

// apply writes artifacts, or prints them in dry-run mode
func (e *env) apply(artifacts []project.Artifact) error {
	if dryRun {
		return printArtifacts(artifacts)
	}
	return store.Apply(e.store, artifacts)
}

// loadProjectWithServices loads a project and all of its services
func (e *env) loadProjectWithServices(name string) (project.ProjectSpec, []project.ServiceSpec, error) {
	proj, err := e.registry.LoadProject(name)
	if err != nil {
		return project.ProjectSpec{}, nil, err
	}
	services, err := e.registry.ListServices(name)
	if err != nil {
		return project.ProjectSpec{}, nil, err
	}
	return proj, services, nil
}

type artifactItem struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Dir     bool   `json:"dir,omitempty"`
	Content string `json:"content,omitempty"`
}

func artifactItems(artifacts []project.Artifact) []artifactItem {
	items := make([]artifactItem, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, artifactItem{
			Path:    a.Path,
			Mode:    fmt.Sprintf("%04o", a.Mode.Perm()),
			Dir:     a.Dir,
			Content: a.Content,
		})
	}
	return items
}

// printArtifacts shows the files and directories a command would write
func printArtifacts(artifacts []project.Artifact) error {
	if jsonOutput {
		return output.JSON(artifactItems(artifacts))
	}

	for _, a := range artifacts {
		if a.Dir {
			output.Info("mkdir %s", a.Path)
		}
	}
	for _, a := range artifacts {
		if !a.Dir {
			output.Block(fmt.Sprintf("%s (%04o)", a.Path, a.Mode.Perm()), a.Content)
		}
	}
	return nil
}

// printCommands shows the commands a dry run would have executed
func printCommands(commands ...string) error {
	if jsonOutput {
		return output.JSON(map[string]interface{}{"commands": commands})
	}
	for _, c := range commands {
		output.Print("would run: %s", c)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// parsePort converts a port argument, rejecting anything outside 1-65535
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, errors.InvalidSpecf("invalid port %q: must be a number between 1 and 65535", s)
	}
	return port, nil
}

// commandContext returns the command's context, or Background when the
// command is run directly.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// confirm asks a yes/no question on stdin. The question is not printed in
// JSON mode so that stdout stays a single JSON document.
func confirm(format string, args ...interface{}) bool {
	if !jsonOutput {
		output.Print(format, args...)
	}
	return input.Confirm(deps.StdinReader)
}

// cancelled reports an operation the user declined
func cancelled(msg string) error {
	if jsonOutput {
		return output.JSON(map[string]interface{}{"success": false, "cancelled": true})
	}
	output.Info("%s", msg)
	return nil
}

// progress prints a step of a long operation, except in JSON mode
func progress(format string, args ...interface{}) {
	if !jsonOutput {
		output.Info(format, args...)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
