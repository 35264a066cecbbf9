package config

import (
	"path/filepath"
)

// File layout. Every path is absolute and logical; FSStore prefixes Root.
//
//	<projects_dir>/<project>/project.yaml
//	<projects_dir>/<project>/manage-project.sh
//	<projects_dir>/<project>/README.md
//	<projects_dir>/<project>/services/<service>.yml
//	<projects_dir>/<project>/services/<service>.env
//	<projects_dir>/<project>/services/<service>.deploy.sh
//	<nginx_conf_dir>/<project>.conf
//	<nginx_conf_dir>/<project>/<service>.conf

// ProjectSubdirs are created empty inside every project directory.
var ProjectSubdirs = []string{"nginx", "services", "ssl", "logs"}

// ProjectMeta returns the path of a project's metadata file.
func (c *Config) ProjectMeta(project string) string {
	return filepath.Join(c.ProjectDir(project), "project.yaml")
}

// ManageScript returns the path of a project's management script.
func (c *Config) ManageScript(project string) string {
	return filepath.Join(c.ProjectDir(project), "manage-project.sh")
}

// Readme returns the path of a project's README.
func (c *Config) Readme(project string) string {
	return filepath.Join(c.ProjectDir(project), "README.md")
}

// ServicesDir returns the directory holding a project's service manifests.
func (c *Config) ServicesDir(project string) string {
	return filepath.Join(c.ProjectDir(project), "services")
}

// ServiceManifest returns the path of a service's stack manifest.
func (c *Config) ServiceManifest(project, service string) string {
	return filepath.Join(c.ServicesDir(project), service+".yml")
}

// ServiceEnv returns the path of a service's env file.
func (c *Config) ServiceEnv(project, service string) string {
	return filepath.Join(c.ServicesDir(project), service+".env")
}

// ServiceDeployScript returns the path of a service's deploy script.
func (c *Config) ServiceDeployScript(project, service string) string {
	return filepath.Join(c.ServicesDir(project), service+".deploy.sh")
}

// ProjectVhost returns the path of a project's nginx vhost.
func (c *Config) ProjectVhost(project string) string {
	return filepath.Join(c.NginxConfDir, project+".conf")
}

// ServiceConfDir returns the nginx directory included by a project vhost.
func (c *Config) ServiceConfDir(project string) string {
	return filepath.Join(c.NginxConfDir, project)
}

// ServiceConf returns the path of a service's nginx config.
func (c *Config) ServiceConf(project, service string) string {
	return filepath.Join(c.ServiceConfDir(project), service+".conf")
}
