package cli

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/executor"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/store"
	"github.com/ksyq12/projctl/internal/swarm"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the host and the projects.

Checks:
  - Docker installation and version
  - Swarm membership and manager role
  - Nginx service and overlay network
  - Configured directories
  - Project metadata, service manifests and vhosts

doctor only reports. It does not install packages or initialize Swarm.

Examples:
  projctl doctor
  projctl doctor --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	CheckSuccess = "success"
	CheckWarning = "warning"
	CheckError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// ProjectHealth represents the checks of a single project
type ProjectHealth struct {
	Name   string        `json:"name"`
	Checks []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult   `json:"system_requirements"`
	Swarm              []CheckResult   `json:"swarm"`
	Configuration      []CheckResult   `json:"configuration"`
	Projects           []ProjectHealth `json:"projects"`
}

var dockerVersionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

func runDoctor(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	// Run all checks
	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(deps.Executor)
	report.Swarm = checkSwarm(commandContext(cmd), e.cfg, deps.Executor)
	report.Configuration = checkConfiguration(e.cfg, e.store)
	report.Projects = checkProjects(e)

	// Output results
	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(exec executor.CommandExecutor) []CheckResult {
	if _, err := exec.LookPath("docker"); err != nil {
		return []CheckResult{{Status: CheckError, Message: "Docker not installed"}}
	}

	out, err := exec.Execute("docker", "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return []CheckResult{
			{Status: CheckSuccess, Message: "Docker installed"},
			{Status: CheckError, Message: "Docker daemon not reachable"},
		}
	}

	version := "unknown"
	if matches := dockerVersionPattern.FindStringSubmatch(string(out)); len(matches) >= 2 {
		version = matches[1]
	}
	return []CheckResult{{Status: CheckSuccess, Message: fmt.Sprintf("Docker installed (%s)", version)}}
}

func checkSwarm(ctx context.Context, cfg *config.Config, exec executor.CommandExecutor) []CheckResult {
	client, err := deps.SwarmFactory.Create()
	if err != nil {
		return []CheckResult{{Status: CheckError, Message: fmt.Sprintf("Docker API unavailable: %v", err)}}
	}
	defer client.Close()

	active, manager, err := client.SwarmActive(ctx)
	if err != nil {
		return []CheckResult{{Status: CheckError, Message: fmt.Sprintf("Could not query swarm state: %v", err)}}
	}
	if !active {
		return []CheckResult{{Status: CheckError, Message: "Swarm not active (run docker swarm init)"}}
	}

	results := []CheckResult{}
	if manager {
		results = append(results, CheckResult{Status: CheckSuccess, Message: "Swarm active, node is a manager"})
	} else {
		results = append(results, CheckResult{Status: CheckError, Message: "Swarm active, but stacks can only be deployed from a manager"})
	}

	results = append(results, checkNginxService(ctx, client, cfg.NginxService))
	results = append(results, checkNetwork(exec, cfg.Network))
	return results
}

func checkNginxService(ctx context.Context, client *swarm.Client, name string) CheckResult {
	svc, err := client.Service(ctx, name)
	switch {
	case err != nil:
		return CheckResult{Status: CheckError, Message: fmt.Sprintf("Could not query service %s: %v", name, err)}
	case svc == nil:
		return CheckResult{Status: CheckError, Message: fmt.Sprintf("Nginx service %s not found", name)}
	case !svc.Healthy():
		return CheckResult{
			Status:  CheckWarning,
			Message: fmt.Sprintf("Nginx service %s running %d/%d replicas", name, svc.Running, svc.Desired),
		}
	}
	return CheckResult{
		Status:  CheckSuccess,
		Message: fmt.Sprintf("Nginx service %s running (%d/%d)", name, svc.Running, svc.Desired),
	}
}

func checkNetwork(exec executor.CommandExecutor, name string) CheckResult {
	out, err := exec.Execute("docker", "network", "inspect", "--format", "{{.Driver}}", name)
	if err != nil {
		return CheckResult{Status: CheckWarning, Message: fmt.Sprintf("Network %s not found (deploy scripts create it)", name)}
	}
	if driver := strings.TrimSpace(string(out)); driver != "overlay" {
		return CheckResult{Status: CheckError, Message: fmt.Sprintf("Network %s uses driver %s, expected overlay", name, driver)}
	}
	return CheckResult{Status: CheckSuccess, Message: fmt.Sprintf("Overlay network %s exists", name)}
}

func checkConfiguration(cfg *config.Config, s store.Store) []CheckResult {
	results := []CheckResult{}

	if cfg.File != "" {
		results = append(results, CheckResult{Status: CheckSuccess, Message: fmt.Sprintf("Config file loaded (%s)", cfg.File)})
	} else {
		results = append(results, CheckResult{Status: CheckWarning, Message: "No config file, using defaults"})
	}

	dirs := []struct {
		label    string
		path     string
		required bool
	}{
		{"Projects directory", cfg.ProjectsDir, true},
		{"Nginx config directory", cfg.NginxConfDir, true},
		{"Backup directory", cfg.BackupDir, false},
	}
	for _, d := range dirs {
		switch {
		case s.Exists(d.path):
			results = append(results, CheckResult{Status: CheckSuccess, Message: fmt.Sprintf("%s exists (%s)", d.label, d.path)})
		case d.required:
			results = append(results, CheckResult{Status: CheckError, Message: fmt.Sprintf("%s missing (%s)", d.label, d.path)})
		default:
			results = append(results, CheckResult{Status: CheckWarning, Message: fmt.Sprintf("%s missing (%s)", d.label, d.path)})
		}
	}

	return results
}

func checkProjects(e *env) []ProjectHealth {
	projects, err := e.registry.ListProjects()
	if err != nil {
		return []ProjectHealth{{
			Name:   e.cfg.ProjectsDir,
			Checks: []CheckResult{{Status: CheckError, Message: err.Error()}},
		}}
	}

	health := make([]ProjectHealth, 0, len(projects))
	for _, proj := range projects {
		h := ProjectHealth{Name: proj.Name, Checks: []CheckResult{}}

		if !e.store.Exists(e.cfg.ProjectVhost(proj.Name)) {
			h.Checks = append(h.Checks, CheckResult{Status: CheckError, Message: "vhost missing"})
		}

		services, err := e.registry.ListServices(proj.Name)
		if err != nil {
			h.Checks = append(h.Checks, CheckResult{Status: CheckError, Message: err.Error()})
			health = append(health, h)
			continue
		}
		for _, svc := range services {
			if !e.store.Exists(e.cfg.ServiceConf(proj.Name, svc.Name)) {
				h.Checks = append(h.Checks, CheckResult{
					Status:  CheckError,
					Message: fmt.Sprintf("nginx config of %s missing", svc.Name),
				})
			}
		}

		if len(h.Checks) == 0 {
			status := CheckSuccess
			if len(services) == 0 {
				status = CheckWarning
			}
			h.Checks = append(h.Checks, CheckResult{
				Status:  status,
				Message: fmt.Sprintf("%d services, config complete", len(services)),
			})
		}
		health = append(health, h)
	}
	return health
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking swarm...")
	for _, check := range report.Swarm {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	if len(report.Projects) == 0 {
		output.Print("No projects configured")
		return
	}
	output.Print("Checking projects...")
	for _, p := range report.Projects {
		for _, check := range p.Checks {
			displayCheck(CheckResult{Status: check.Status, Message: p.Name + " - " + check.Message})
		}
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case CheckSuccess:
		output.Success("%s", check.Message)
	case CheckWarning:
		output.Warn("%s", check.Message)
	case CheckError:
		output.Error("%s", check.Message)
	}
}
