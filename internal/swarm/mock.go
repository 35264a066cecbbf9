package swarm

import (
	"context"

	"github.com/docker/docker/api/types"
	dockerswarm "github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/api/types/system"
)

// MockAPI is a test double for API
type MockAPI struct {
	InfoFunc        func(ctx context.Context) (system.Info, error)
	ServiceListFunc func(ctx context.Context, options types.ServiceListOptions) ([]dockerswarm.Service, error)

	ServiceListCalls []types.ServiceListOptions
	Closed           bool
}

// Info calls the mock function or reports an active manager
func (m *MockAPI) Info(ctx context.Context) (system.Info, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	var info system.Info
	info.Swarm.LocalNodeState = dockerswarm.LocalNodeStateActive
	info.Swarm.ControlAvailable = true
	return info, nil
}

// ServiceList calls the mock function or returns no services
func (m *MockAPI) ServiceList(ctx context.Context, options types.ServiceListOptions) ([]dockerswarm.Service, error) {
	m.ServiceListCalls = append(m.ServiceListCalls, options)
	if m.ServiceListFunc != nil {
		return m.ServiceListFunc(ctx, options)
	}
	return nil, nil
}

// Close records the call
func (m *MockAPI) Close() error {
	m.Closed = true
	return nil
}

// NewMockService builds a swarm service as the Engine API reports it
func NewMockService(name, image string, labels map[string]string, running, desired uint64) dockerswarm.Service {
	var svc dockerswarm.Service
	svc.Spec.Name = name
	svc.Spec.Labels = labels
	svc.Spec.TaskTemplate.ContainerSpec = &dockerswarm.ContainerSpec{Image: image}
	svc.ServiceStatus = &dockerswarm.ServiceStatus{RunningTasks: running, DesiredTasks: desired}
	return svc
}
