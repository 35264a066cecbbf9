// Package swarm talks to Docker Swarm. Client queries the Engine API for
// state; Stack runs the docker CLI for stack operations the API does not
// offer (stack deploy and rm are implemented client side by the CLI).
package swarm

import (
	"context"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	dockerswarm "github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/client"

	"github.com/ksyq12/projctl/internal/compose"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
)

// StackLabel is set by `docker stack deploy` on every service of a stack.
const StackLabel = "com.docker.stack.namespace"

// API is the part of the Docker Engine client used by Client.
type API interface {
	Info(ctx context.Context) (system.Info, error)
	ServiceList(ctx context.Context, options types.ServiceListOptions) ([]dockerswarm.Service, error)
	Close() error
}

// Client queries swarm state through the Docker Engine API.
type Client struct {
	api API
}

// ServiceStatus is the replica state of one swarm service.
type ServiceStatus struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Image   string `json:"image"`
	Running uint64 `json:"running"`
	Desired uint64 `json:"desired"`
}

// Healthy reports whether every desired replica is running.
func (s ServiceStatus) Healthy() bool {
	return s.Desired > 0 && s.Running >= s.Desired
}

// NewClient connects to the Docker daemon configured by the environment
// (DOCKER_HOST and friends).
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, "failed to create Docker client", err)
	}
	return &Client{api: cli}, nil
}

// NewClientWithAPI creates a Client over an existing API implementation.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// SwarmActive reports whether this node is an active swarm member, and
// whether it is a manager.
func (c *Client) SwarmActive(ctx context.Context) (active bool, manager bool, err error) {
	info, err := c.api.Info(ctx)
	if err != nil {
		return false, false, errors.Wrap(errors.ErrCodeExternalTool, "docker info failed", err)
	}
	logger.DebugFields("docker info", map[string]interface{}{
		"server_version": info.ServerVersion,
		"swarm_state":    string(info.Swarm.LocalNodeState),
	})
	active = info.Swarm.LocalNodeState == dockerswarm.LocalNodeStateActive
	return active, active && info.Swarm.ControlAvailable, nil
}

// StackServices returns the replica state of every service in a stack,
// sorted by name.
func (c *Client) StackServices(ctx context.Context, stack string) ([]ServiceStatus, error) {
	return c.services(ctx, filters.NewArgs(filters.Arg("label", StackLabel+"="+stack)))
}

// Service returns the state of a single service by exact name.
func (c *Client) Service(ctx context.Context, name string) (*ServiceStatus, error) {
	services, err := c.services(ctx, filters.NewArgs(filters.Arg("name", name)))
	if err != nil {
		return nil, err
	}
	// The name filter matches prefixes
	for i := range services {
		if services[i].Name == name {
			return &services[i], nil
		}
	}
	return nil, nil
}

func (c *Client) services(ctx context.Context, args filters.Args) ([]ServiceStatus, error) {
	list, err := c.api.ServiceList(ctx, types.ServiceListOptions{Filters: args, Status: true})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, "failed to list swarm services", err)
	}

	result := make([]ServiceStatus, 0, len(list))
	for _, svc := range list {
		st := ServiceStatus{
			Name:    svc.Spec.Name,
			Service: svc.Spec.Labels[compose.LabelService],
		}
		if svc.Spec.TaskTemplate.ContainerSpec != nil {
			st.Image = svc.Spec.TaskTemplate.ContainerSpec.Image
		}
		if svc.ServiceStatus != nil {
			st.Running = svc.ServiceStatus.RunningTasks
			st.Desired = svc.ServiceStatus.DesiredTasks
		}
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
