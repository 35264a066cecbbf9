package executor

import (
	"os"
	"os/exec"
	"strings"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command with the given name and arguments and returns
	// its combined output
	Execute(name string, args ...string) ([]byte, error)

	// Stream runs a command attached to the terminal (stdin/stdout/stderr)
	Stream(name string, args ...string) error

	// LookPath searches for an executable in the directories named by the PATH
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct{}

// NewSystemExecutor creates a new SystemExecutor
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute runs a command and returns combined output
func (e *SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	logger.Debug("exec: %s", commandLine(name, args))
	cmd := exec.Command(name, args...)
	return cmd.CombinedOutput()
}

// Stream runs a command with the process's own stdio
func (e *SystemExecutor) Stream(name string, args ...string) error {
	logger.Debug("exec (attached): %s", commandLine(name, args))
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// LookPath searches for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command through exec and converts a failure into an
// EXTERNAL_TOOL error carrying the command output. There is no retry.
func Run(exec CommandExecutor, name string, args ...string) ([]byte, error) {
	out, err := exec.Execute(name, args...)
	if err != nil {
		return out, errors.ExternalTool(commandLine(name, args), out, err)
	}
	return out, nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	StreamFunc   func(name string, args ...string) error
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// String returns the call as a single command line
func (c CommandCall) String() string {
	return commandLine(c.Name, c.Args)
}

// Execute calls the mock function
func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

// Stream calls the mock function
func (m *MockExecutor) Stream(name string, args ...string) error {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.StreamFunc != nil {
		return m.StreamFunc(name, args...)
	}
	return nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// Commands returns every recorded call as a command line
func (m *MockExecutor) Commands() []string {
	lines := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		lines = append(lines, c.String())
	}
	return lines
}
