package swarm

import (
	"strconv"
	"strings"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/executor"
	"github.com/ksyq12/projctl/internal/logger"
)

// Stack runs docker CLI commands against swarm stacks. Every command is
// run once; the first failure is returned as an EXTERNAL_TOOL error.
type Stack struct {
	exec         executor.CommandExecutor
	nginxService string
}

// NewStack creates a Stack that reloads nginxService after deploys.
func NewStack(exec executor.CommandExecutor, nginxService string) *Stack {
	return &Stack{exec: exec, nginxService: nginxService}
}

// Deploy deploys manifests into stack with a single `docker stack deploy`.
func (s *Stack) Deploy(stack string, manifests ...string) error {
	if len(manifests) == 0 {
		return errors.InvalidSpecf("stack %s has no manifests to deploy", stack)
	}
	args := []string{"stack", "deploy"}
	for _, m := range manifests {
		args = append(args, "-c", m)
	}
	args = append(args, stack)

	logger.Info("Deploying stack %s (%d manifests)", stack, len(manifests))
	_, err := executor.Run(s.exec, "docker", args...)
	return err
}

// EnsureNetwork creates the attachable overlay network that stacks and the
// nginx service share, unless it already exists. It reports whether the
// network was created.
func (s *Stack) EnsureNetwork(name string) (bool, error) {
	if _, err := s.exec.Execute("docker", "network", "inspect", name); err == nil {
		return false, nil
	}
	logger.Info("Creating overlay network %s", name)
	if _, err := executor.Run(s.exec, "docker", "network", "create", "--driver", "overlay", "--attachable", name); err != nil {
		return false, err
	}
	return true, nil
}

// Remove removes a stack and all its services.
func (s *Stack) Remove(stack string) error {
	logger.Info("Removing stack %s", stack)
	_, err := executor.Run(s.exec, "docker", "stack", "rm", stack)
	return err
}

// RemoveService removes a single service of a stack. A service that is not
// deployed is left alone; the result reports whether one was removed.
func (s *Stack) RemoveService(stack, service string) (bool, error) {
	name := ServiceName(stack, service)
	if _, err := s.exec.Execute("docker", "service", "inspect", name); err != nil {
		logger.Debug("service %s is not deployed", name)
		return false, nil
	}
	logger.Info("Removing service %s", name)
	if _, err := executor.Run(s.exec, "docker", "service", "rm", name); err != nil {
		return false, err
	}
	return true, nil
}

// ReloadNginx forces the nginx service to restart its tasks so that new
// configuration is picked up.
func (s *Stack) ReloadNginx() error {
	logger.Info("Reloading %s", s.nginxService)
	_, err := executor.Run(s.exec, "docker", "service", "update", "--force", s.nginxService)
	return err
}

// Logs streams the logs of a stack service to the terminal.
func (s *Stack) Logs(stack, service string, follow bool, lines int) error {
	args := []string{"service", "logs"}
	if follow {
		args = append(args, "--follow")
	}
	if lines > 0 {
		args = append(args, "--tail", strconv.Itoa(lines))
	}
	args = append(args, ServiceName(stack, service))

	if err := s.exec.Stream("docker", args...); err != nil {
		return errors.ExternalTool("docker "+strings.Join(args, " "), nil, err)
	}
	return nil
}

// ServiceName is the swarm name of a service deployed in a stack.
func ServiceName(stack, service string) string {
	return stack + "_" + service
}
