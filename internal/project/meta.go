package project

import (
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/projctl/internal/errors"
)

// MarshalMeta renders the project.yaml content for p.
func MarshalMeta(p ProjectSpec) (string, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to marshal project metadata", err)
	}
	return string(data), nil
}

// ParseMeta decodes and validates project.yaml content.
func ParseMeta(data []byte) (ProjectSpec, error) {
	var p ProjectSpec
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, errors.Wrap(errors.ErrCodeStorage, "failed to parse project metadata", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
