// Package registry reads projects and services back from the store. The
// filesystem is the only record of what exists; there is no index.
package registry

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/ksyq12/projctl/internal/compose"
	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/store"
)

// Registry lists projects and services stored under a layout.
type Registry struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Registry.
func New(cfg *config.Config, s store.Store) *Registry {
	return &Registry{cfg: cfg, store: s}
}

// Exists reports whether a project directory exists, with or without
// metadata.
func (r *Registry) Exists(name string) bool {
	return r.store.Exists(r.cfg.ProjectDir(name))
}

// LoadProject reads a project's metadata.
func (r *Registry) LoadProject(name string) (project.ProjectSpec, error) {
	if !project.IsDNSLabel(name) {
		return project.ProjectSpec{}, errors.InvalidSpecf("invalid project name %q", name)
	}
	data, err := r.store.Read(r.cfg.ProjectMeta(name))
	if err != nil {
		if store.IsNotExist(err) {
			return project.ProjectSpec{}, errors.ProjectNotFound(name)
		}
		return project.ProjectSpec{}, err
	}
	spec, err := project.ParseMeta(data)
	if err != nil {
		return project.ProjectSpec{}, errors.WrapSubject(errors.CodeOf(err), name, err)
	}
	if spec.Name != name {
		return project.ProjectSpec{}, &errors.Error{
			Code:    errors.ErrCodeStorage,
			Subject: name,
			Message: "project.yaml names project " + spec.Name,
		}
	}
	return spec, nil
}

// ListProjects returns every project with readable metadata, sorted by
// name. Directories without project.yaml are skipped.
func (r *Registry) ListProjects() ([]project.ProjectSpec, error) {
	entries, err := r.store.List(r.cfg.ProjectsDir)
	if err != nil {
		return nil, err
	}

	var projects []project.ProjectSpec
	for _, e := range entries {
		if !e.Dir || !project.IsDNSLabel(e.Name) {
			continue
		}
		if !r.store.Exists(r.cfg.ProjectMeta(e.Name)) {
			logger.Debug("skipping %s: no project.yaml", e.Name)
			continue
		}
		spec, err := r.LoadProject(e.Name)
		if err != nil {
			return nil, err
		}
		projects = append(projects, spec)
	}
	return projects, nil
}

// ListServices rebuilds the specs of a project's services from their
// manifests and env files, sorted by name. Each service appears once.
func (r *Registry) ListServices(projectName string) ([]project.ServiceSpec, error) {
	entries, err := r.store.List(r.cfg.ServicesDir(projectName))
	if err != nil {
		return nil, err
	}

	var services []project.ServiceSpec
	for _, e := range entries {
		if e.Dir || filepath.Ext(e.Name) != ".yml" {
			continue
		}
		name := strings.TrimSuffix(e.Name, ".yml")
		svc, err := r.LoadService(projectName, name)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

// LoadService rebuilds a single service spec.
func (r *Registry) LoadService(projectName, service string) (project.ServiceSpec, error) {
	path := r.cfg.ServiceManifest(projectName, service)
	data, err := r.store.Read(path)
	if err != nil {
		if store.IsNotExist(err) {
			return project.ServiceSpec{}, errors.ServiceNotFound(projectName, service)
		}
		return project.ServiceSpec{}, err
	}

	f, err := compose.Parse(data)
	if err != nil {
		return project.ServiceSpec{}, errors.WrapSubject(errors.ErrCodeStorage, path, err)
	}
	specs, err := f.Specs()
	if err != nil {
		return project.ServiceSpec{}, errors.WrapSubject(errors.CodeOf(err), path, err)
	}

	var spec *project.ServiceSpec
	for i := range specs {
		if specs[i].Name == service {
			spec = &specs[i]
			break
		}
	}
	if spec == nil {
		return project.ServiceSpec{}, &errors.Error{
			Code:    errors.ErrCodeStorage,
			Subject: path,
			Message: "manifest has no projctl labels for service " + service,
		}
	}

	// Only an env file the manifest refers to is part of the service
	if !usesEnvFile(f, service) {
		return *spec, nil
	}
	envPath := r.cfg.ServiceEnv(projectName, service)
	if env, err := r.store.Read(envPath); err == nil {
		if spec.Env, err = project.ParseEnvFile(bytes.NewReader(env)); err != nil {
			return project.ServiceSpec{}, errors.WrapSubject(errors.ErrCodeStorage, envPath, err)
		}
	} else if !store.IsNotExist(err) {
		return project.ServiceSpec{}, err
	}

	return *spec, nil
}

func usesEnvFile(f *compose.File, service string) bool {
	for _, name := range f.Services[service].EnvFile {
		if name == service+".env" {
			return true
		}
	}
	return false
}

// ProjectsWithService returns the projects, sorted by name, that have a
// service called service.
func (r *Registry) ProjectsWithService(service string) ([]string, error) {
	projects, err := r.ListProjects()
	if err != nil {
		return nil, err
	}
	var owners []string
	for _, p := range projects {
		if r.store.Exists(r.cfg.ServiceManifest(p.Name, service)) {
			owners = append(owners, p.Name)
		}
	}
	return owners, nil
}

// ManifestPaths returns the manifest path of every service, in name order.
func (r *Registry) ManifestPaths(projectName string, services []project.ServiceSpec) []string {
	paths := make([]string, 0, len(services))
	for _, s := range services {
		paths = append(paths, r.cfg.ServiceManifest(projectName, s.Name))
	}
	return paths
}

// RemoveProject deletes the project directory and its nginx configuration.
// It stops at the first failure.
func (r *Registry) RemoveProject(name string) error {
	if !project.IsDNSLabel(name) {
		return errors.InvalidSpecf("invalid project name %q", name)
	}
	for _, path := range []string{
		r.cfg.ServiceConfDir(name),
		r.cfg.ProjectVhost(name),
		r.cfg.ProjectDir(name),
	} {
		logger.Debug("remove %s", path)
		if err := r.store.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}
