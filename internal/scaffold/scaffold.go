// Package scaffold composes generated files into project bundles: the
// files that make up a new project and the files added with each service.
//
// Like package generator it never touches the filesystem. It returns
// artifacts with absolute paths for a store to write.
package scaffold

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/generator"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/template"
)

// Scaffolder builds project and service artifacts for one installation.
type Scaffolder struct {
	cfg *config.Config
	gen *generator.Generator
}

// New creates a Scaffolder.
func New(cfg *config.Config) *Scaffolder {
	return &Scaffolder{cfg: cfg, gen: generator.New(cfg)}
}

// Generator returns the service generator used by the scaffolder.
func (s *Scaffolder) Generator() *generator.Generator {
	return s.gen
}

// CreateProject returns the directories and files of a new project: the
// project layout, project.yaml, the management script, the README and the
// project vhost, which serves 503 until a service is added.
func (s *Scaffolder) CreateProject(spec project.ProjectSpec) ([]project.Artifact, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var artifacts []project.Artifact
	dir := s.cfg.ProjectDir(spec.Name)
	artifacts = append(artifacts, dirArtifact(dir))
	for _, sub := range config.ProjectSubdirs {
		artifacts = append(artifacts, dirArtifact(filepath.Join(dir, sub)))
	}
	artifacts = append(artifacts, dirArtifact(s.cfg.ServiceConfDir(spec.Name)))

	meta, err := project.MarshalMeta(spec)
	if err != nil {
		return nil, err
	}

	data := template.ProjectData{
		Project:         spec.Name,
		Domain:          spec.Domain,
		DefaultPort:     spec.DefaultPort,
		CreatedAt:       formatTime(spec.CreatedAt),
		ProjectDir:      dir,
		NginxConf:       s.cfg.ProjectVhost(spec.Name),
		NginxServiceDir: s.cfg.ServiceConfDir(spec.Name),
		Network:         s.cfg.Network,
	}
	manage, err := template.Render(template.ManageScript, data)
	if err != nil {
		return nil, err
	}
	readme, err := template.Render(template.ProjectReadme, data)
	if err != nil {
		return nil, err
	}

	artifacts = append(artifacts,
		fileArtifact(s.cfg.ProjectMeta(spec.Name), meta, project.ModeFile),
		fileArtifact(s.cfg.ManageScript(spec.Name), manage, project.ModeExecutable),
		fileArtifact(s.cfg.Readme(spec.Name), readme, project.ModeFile),
		s.vhostArtifact(spec, nil),
	)
	return artifacts, nil
}

// AddService returns the artifacts for svc in proj: its nginx config,
// stack manifest, env file (when svc has environment), deploy script and
// the regenerated project vhost. existing lists the services already in
// the project; a service with the same name is replaced.
func (s *Scaffolder) AddService(proj project.ProjectSpec, svc project.ServiceSpec, existing []project.ServiceSpec) ([]project.Artifact, error) {
	if err := proj.Validate(); err != nil {
		return nil, err
	}
	bundle, err := s.gen.Generate(svc, proj)
	if err != nil {
		return nil, err
	}

	artifacts := []project.Artifact{
		fileArtifact(s.cfg.ServiceConf(proj.Name, svc.Name), bundle.NginxConfig, project.ModeFile),
		fileArtifact(s.cfg.ServiceManifest(proj.Name, svc.Name), bundle.ComposeManifest, project.ModeFile),
	}
	if bundle.EnvFile != "" {
		artifacts = append(artifacts, fileArtifact(s.cfg.ServiceEnv(proj.Name, svc.Name), bundle.EnvFile, 0600))
	}
	artifacts = append(artifacts,
		fileArtifact(s.cfg.ServiceDeployScript(proj.Name, svc.Name), bundle.DeployScript, project.ModeExecutable),
		s.vhostArtifact(proj, Merge(existing, svc)),
	)
	return artifacts, nil
}

// RemoveService returns the project vhost regenerated without svc, for
// callers that delete a service's files.
func (s *Scaffolder) RemoveService(proj project.ProjectSpec, service string, existing []project.ServiceSpec) project.Artifact {
	remaining := make([]project.ServiceSpec, 0, len(existing))
	for _, e := range existing {
		if e.Name != service {
			remaining = append(remaining, e)
		}
	}
	return s.vhostArtifact(proj, remaining)
}

// ServicePaths returns every file AddService may write for service.
func (s *Scaffolder) ServicePaths(projectName, service string) []string {
	return []string{
		s.cfg.ServiceConf(projectName, service),
		s.cfg.ServiceManifest(projectName, service),
		s.cfg.ServiceEnv(projectName, service),
		s.cfg.ServiceDeployScript(projectName, service),
	}
}

func (s *Scaffolder) vhostArtifact(proj project.ProjectSpec, services []project.ServiceSpec) project.Artifact {
	conf := s.gen.ProjectConfig(proj, services)
	return fileArtifact(s.cfg.ProjectVhost(proj.Name), conf.String(), project.ModeFile)
}

// Merge returns existing with svc added or replacing the entry of the same
// name, sorted by name.
func Merge(existing []project.ServiceSpec, svc project.ServiceSpec) []project.ServiceSpec {
	merged := make([]project.ServiceSpec, 0, len(existing)+1)
	for _, e := range existing {
		if e.Name != svc.Name {
			merged = append(merged, e)
		}
	}
	merged = append(merged, svc)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}

// Conflicts returns the names of services in existing, other than svc
// itself, that resolve to the same domain as svc.
func Conflicts(proj project.ProjectSpec, svc project.ServiceSpec, existing []project.ServiceSpec) []string {
	domain := svc.EffectiveDomain(proj.Domain)
	var names []string
	for _, e := range existing {
		if e.Name != svc.Name && e.EffectiveDomain(proj.Domain) == domain {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

func fileArtifact(path, content string, mode os.FileMode) project.Artifact {
	return project.Artifact{Path: path, Content: content, Mode: mode}
}

func dirArtifact(path string) project.Artifact {
	return project.Artifact{Path: path, Mode: project.ModeDir, Dir: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
