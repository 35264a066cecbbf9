// Package compose models the subset of the Compose file format that
// projctl writes for `docker stack deploy`, and reads it back.
package compose

import (
	"bytes"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/project"
)

// Version is the Compose file format version written to manifests.
const Version = "3.8"

// Deploy label keys. They let a ServiceSpec be rebuilt from its manifest.
const (
	LabelProject = "projctl.project"
	LabelService = "projctl.service"
	LabelPort    = "projctl.port"
	LabelDomain  = "projctl.domain"
)

// File is a Compose file.
type File struct {
	Version  string             `yaml:"version"`
	Services map[string]Service `yaml:"services"`
	Volumes  map[string]Volume  `yaml:"volumes,omitempty"`
	Networks map[string]Network `yaml:"networks,omitempty"`
}

// Service is a single Compose service.
type Service struct {
	Image       string            `yaml:"image"`
	Environment map[string]string `yaml:"environment,omitempty"`
	EnvFile     []string          `yaml:"env_file,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Networks    []string          `yaml:"networks,omitempty"`
	Healthcheck *Healthcheck      `yaml:"healthcheck,omitempty"`
	Deploy      *Deploy           `yaml:"deploy,omitempty"`
}

// Healthcheck is a container health check.
type Healthcheck struct {
	Test        Command `yaml:"test"`
	Interval    string  `yaml:"interval"`
	Timeout     string  `yaml:"timeout"`
	Retries     int     `yaml:"retries"`
	StartPeriod string  `yaml:"start_period"`
}

// Deploy holds Swarm deployment settings.
type Deploy struct {
	Replicas      int               `yaml:"replicas"`
	Labels        map[string]string `yaml:"labels,omitempty"`
	RestartPolicy *RestartPolicy    `yaml:"restart_policy,omitempty"`
	UpdateConfig  *UpdateConfig     `yaml:"update_config,omitempty"`
}

// RestartPolicy controls task restarts.
type RestartPolicy struct {
	Condition   string `yaml:"condition"`
	Delay       string `yaml:"delay"`
	MaxAttempts int    `yaml:"max_attempts"`
	Window      string `yaml:"window"`
}

// UpdateConfig controls rolling updates.
type UpdateConfig struct {
	Parallelism   int    `yaml:"parallelism"`
	Delay         string `yaml:"delay"`
	Order         string `yaml:"order"`
	FailureAction string `yaml:"failure_action"`
}

// Volume is a named volume. The zero value uses the default driver.
type Volume struct {
	Driver string `yaml:"driver,omitempty"`
}

// Network is a top-level network reference.
type Network struct {
	External bool `yaml:"external"`
}

// Command is an exec-form command, written in flow style:
// ["CMD", "curl", "-f", "http://localhost:3001/health"].
type Command []string

// MarshalYAML renders the command as a flow sequence of quoted strings.
func (c Command) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, arg := range c {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: arg,
			Style: yaml.DoubleQuotedStyle,
		})
	}
	return node, nil
}

// Marshal renders f as YAML with two-space indentation.
func Marshal(f *File) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to marshal compose file", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to marshal compose file", err)
	}
	return buf.String(), nil
}

// Parse decodes a Compose file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, "failed to parse compose file", err)
	}
	return &f, nil
}

// Labels returns the deploy labels that identify svc within proj.
func Labels(projectName string, svc project.ServiceSpec) map[string]string {
	labels := map[string]string{
		LabelService: svc.Name,
		LabelPort:    strconv.Itoa(svc.Port),
	}
	if projectName != "" {
		labels[LabelProject] = projectName
	}
	if svc.Domain != "" {
		labels[LabelDomain] = svc.Domain
	}
	return labels
}

// Specs rebuilds the service specs of every service in f that carries
// projctl deploy labels, sorted by name. Env is not restored; it lives in
// the service's env file.
func (f *File) Specs() ([]project.ServiceSpec, error) {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	var specs []project.ServiceSpec
	for _, name := range names {
		svc := f.Services[name]
		if svc.Deploy == nil || svc.Deploy.Labels[LabelService] == "" {
			continue
		}
		labels := svc.Deploy.Labels
		port, err := strconv.Atoi(labels[LabelPort])
		if err != nil {
			return nil, errors.InvalidSpecf("service %s: invalid %s label %q", name, LabelPort, labels[LabelPort])
		}
		spec := project.ServiceSpec{
			Name:   labels[LabelService],
			Port:   port,
			Domain: labels[LabelDomain],
		}
		if svc.Image != spec.EffectiveImage() {
			spec.Image = svc.Image
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
