package cli

import (
	"time"

	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/executor"
	"github.com/ksyq12/projctl/internal/input"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/ksyq12/projctl/internal/swarm"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader ConfigLoader
	StoreFactory StoreFactory
	SwarmFactory SwarmFactory
	Executor     executor.CommandExecutor
	StdinReader  input.Reader
	Clock        Clock
}

// ConfigLoader handles configuration loading
type ConfigLoader interface {
	Load(file string) (*config.Config, error)
}

// StoreFactory creates the store that artifacts are written to
type StoreFactory interface {
	Create(root string) store.Store
}

// SwarmFactory connects to the Docker Engine API
type SwarmFactory interface {
	Create() (*swarm.Client, error)
}

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader: &realConfigLoader{},
	StoreFactory: &realStoreFactory{},
	SwarmFactory: &realSwarmFactory{},
	Executor:     executor.NewSystemExecutor(),
	StdinReader:  input.NewStdinReader(),
	Clock:        realClock{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(file string) (*config.Config, error) {
	return config.Load(file)
}

type realStoreFactory struct{}

func (r *realStoreFactory) Create(root string) store.Store {
	return store.NewFS(root)
}

type realSwarmFactory struct{}

func (r *realSwarmFactory) Create() (*swarm.Client, error) {
	return swarm.NewClient()
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
