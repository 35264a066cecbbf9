package cli

import (
	"time"

	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/executor"
	"github.com/ksyq12/projctl/internal/input"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/ksyq12/projctl/internal/swarm"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	LoadCalls []string
}

func (m *MockConfigLoader) Load(file string) (*config.Config, error) {
	m.LoadCalls = append(m.LoadCalls, file)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

// MockStoreFactory is a test double for StoreFactory
type MockStoreFactory struct {
	Store *store.MockStore
	Roots []string
}

func (m *MockStoreFactory) Create(root string) store.Store {
	m.Roots = append(m.Roots, root)
	if m.Store == nil {
		m.Store = store.NewMockStore()
	}
	return m.Store
}

// MockSwarmFactory is a test double for SwarmFactory
type MockSwarmFactory struct {
	API   *swarm.MockAPI
	Err   error
	Calls int
}

func (m *MockSwarmFactory) Create() (*swarm.Client, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.API == nil {
		m.API = &swarm.MockAPI{}
	}
	return swarm.NewClientWithAPI(m.API), nil
}

// MockClock is a test double for Clock
type MockClock struct {
	Time time.Time
}

func (m MockClock) Now() time.Time {
	return m.Time
}

// MockNow is the time reported by the default MockClock
var MockNow = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{Cfg: config.New()},
			StoreFactory: &MockStoreFactory{Store: store.NewMockStore()},
			SwarmFactory: &MockSwarmFactory{API: &swarm.MockAPI{}},
			Executor:     &executor.MockExecutor{},
			StdinReader:  input.NewStringReader("y\n"),
			Clock:        MockClock{Time: MockNow},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithStore sets the store returned by the store factory
func (b *MockDependenciesBuilder) WithStore(s *store.MockStore) *MockDependenciesBuilder {
	b.deps.StoreFactory = &MockStoreFactory{Store: s}
	return b
}

// WithSwarmAPI sets the Docker API behind the swarm client
func (b *MockDependenciesBuilder) WithSwarmAPI(api *swarm.MockAPI) *MockDependenciesBuilder {
	b.deps.SwarmFactory = &MockSwarmFactory{API: api}
	return b
}

// WithSwarmError makes connecting to Docker fail
func (b *MockDependenciesBuilder) WithSwarmError(err error) *MockDependenciesBuilder {
	b.deps.SwarmFactory = &MockSwarmFactory{Err: err}
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(inputs ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(inputs...)
	return b
}

// WithClock sets the time reported by the clock
func (b *MockDependenciesBuilder) WithClock(t time.Time) *MockDependenciesBuilder {
	b.deps.Clock = MockClock{Time: t}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	OldDeps  *Dependencies
	Store    *store.MockStore
	Executor *executor.MockExecutor
	API      *swarm.MockAPI
	Config   *config.Config
}

// NewTestHelper installs mock dependencies and resets the global flags,
// restoring both when the test ends.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}) *TestHelper {
	t.Helper()

	helper := &TestHelper{
		T:        t,
		OldDeps:  deps,
		Store:    store.NewMockStore(),
		Executor: &executor.MockExecutor{},
		API:      &swarm.MockAPI{},
		Config:   config.New(),
	}

	deps = NewMockDeps().
		WithConfig(helper.Config).
		WithStore(helper.Store).
		WithExecutor(helper.Executor).
		WithSwarmAPI(helper.API).
		Build()

	oldJSON, oldDryRun, oldConfigFile := jsonOutput, dryRun, configFile
	jsonOutput, dryRun, configFile = false, false, ""

	// Cleanup function to restore original deps
	t.Cleanup(func() {
		deps = helper.OldDeps
		jsonOutput, dryRun, configFile = oldJSON, oldDryRun, oldConfigFile
	})

	return helper
}

// SetStdinInput sets the stdin input
func (h *TestHelper) SetStdinInput(inputs ...string) {
	deps.StdinReader = input.NewStringReader(inputs...)
}
