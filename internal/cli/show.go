package cli

import (
	"path/filepath"
	"time"

	"github.com/ksyq12/projctl/internal/generator"
	"github.com/ksyq12/projctl/internal/output"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show details of a project",
	Long: `Show a project's metadata, file locations and services.

Examples:
  projctl show myapp
  projctl show myapp --json`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// showDetail represents the detailed project information for output
type showDetail struct {
	Name        string            `json:"name"`
	Domain      string            `json:"domain"`
	DefaultPort int               `json:"default_port"`
	CreatedAt   time.Time         `json:"created_at"`
	Path        string            `json:"path"`
	Vhost       string            `json:"vhost"`
	DomainOwner string            `json:"domain_owner,omitempty"`
	SSLFiles    []string          `json:"ssl_files"`
	Services    []serviceListItem `json:"services"`
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, services, err := e.loadProjectWithServices(args[0])
	if err != nil {
		return err
	}

	detail := showDetail{
		Name:        proj.Name,
		Domain:      proj.Domain,
		DefaultPort: proj.DefaultPort,
		CreatedAt:   proj.CreatedAt,
		Path:        e.cfg.ProjectDir(proj.Name),
		Vhost:       e.cfg.ProjectVhost(proj.Name),
		DomainOwner: generator.DomainOwner(proj, services, proj.Domain),
		SSLFiles:    []string{},
		Services:    make([]serviceListItem, 0, len(services)),
	}
	for _, svc := range services {
		detail.Services = append(detail.Services, newServiceListItem(proj, svc))
	}

	entries, err := e.store.List(filepath.Join(detail.Path, "ssl"))
	if err != nil {
		output.Warn("Could not read ssl directory: %v", err)
	}
	for _, entry := range entries {
		if !entry.Dir {
			detail.SSLFiles = append(detail.SSLFiles, entry.Name)
		}
	}

	// Output JSON if requested
	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("")
	output.Print("Project:    %s", detail.Name)
	output.Print("Domain:     %s", detail.Domain)
	output.Print("Port:       %d", detail.DefaultPort)
	if detail.CreatedAt.IsZero() {
		output.Print("Created:    unknown")
	} else {
		output.Print("Created:    %s", detail.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	output.Print("Path:       %s", detail.Path)
	output.Print("Vhost:      %s", detail.Vhost)
	if detail.DomainOwner != "" {
		output.Print("Serves:     %s -> %s", detail.Domain, detail.DomainOwner)
	} else {
		output.Print("Serves:     %s -> 503 (no service)", detail.Domain)
	}
	output.Print("SSL files:  %d", len(detail.SSLFiles))
	output.Print("")

	if len(detail.Services) == 0 {
		output.Info("No services. Add one with: projctl add-service %s <name> <port>", detail.Name)
		return nil
	}
	output.Table([]string{"NAME", "PORT", "DOMAIN", "IMAGE", "ENV"}, serviceRows(detail.Services))
	return nil
}
