// Package project defines the project and service specs that every
// generated artifact is derived from, and validates them before any text
// is produced.
package project

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ksyq12/projctl/internal/errors"
)

// ServiceSpec describes one service of a project.
type ServiceSpec struct {
	Name   string            `yaml:"name" json:"name" validate:"required,dnslabel"`
	Port   int               `yaml:"port" json:"port" validate:"min=1,max=65535"`
	Domain string            `yaml:"domain,omitempty" json:"domain,omitempty" validate:"omitempty,fqdn"`
	Image  string            `yaml:"image,omitempty" json:"image,omitempty" validate:"omitempty,imageref"`
	Env    map[string]string `yaml:"env,omitempty" json:"env,omitempty" validate:"omitempty,dive,keys,envkey,endkeys,envvalue"`
}

// ProjectSpec describes a project. It is persisted as project.yaml.
type ProjectSpec struct {
	Name        string    `yaml:"name" json:"name" validate:"required,dnslabel"`
	Domain      string    `yaml:"domain" json:"domain" validate:"required,fqdn"`
	DefaultPort int       `yaml:"default_port" json:"default_port" validate:"min=1,max=65535"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
}

// Artifact is a single generated file.
type Artifact struct {
	Path    string      `json:"path"`
	Content string      `json:"content,omitempty"`
	Mode    os.FileMode `json:"mode"`
	// Dir marks a directory to create; Content is ignored.
	Dir bool `json:"dir,omitempty"`
}

// File modes used for artifacts.
const (
	ModeFile       os.FileMode = 0644
	ModeExecutable os.FileMode = 0755
	ModeDir        os.FileMode = 0755
)

// EffectiveDomain returns the service domain, falling back to projectDomain.
func (s ServiceSpec) EffectiveDomain(projectDomain string) string {
	if s.Domain != "" {
		return s.Domain
	}
	return projectDomain
}

// EffectiveImage returns the image, defaulting to <name>:latest.
func (s ServiceSpec) EffectiveImage() string {
	if s.Image != "" {
		return s.Image
	}
	return s.Name + ":latest"
}

// Validate checks the service against the identifier allow-list.
func (s ServiceSpec) Validate() error {
	return check("service", s)
}

// Validate checks the project against the identifier allow-list.
func (p ProjectSpec) Validate() error {
	return check("project", p)
}

// ValidateDomain checks a standalone domain, for callers without a full
// ProjectSpec.
func ValidateDomain(domain string) error {
	if err := validatorInstance().Var(domain, "required,fqdn"); err != nil {
		if domain == "" {
			return errors.InvalidSpec("domain is required")
		}
		return errors.InvalidSpecf("domain %q is not a fully qualified domain name", domain)
	}
	return nil
}

var (
	dnsLabelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	imageRe    = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/:@-]*$`)
	envKeyRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// IsDNSLabel reports whether s is a lowercase DNS label.
func IsDNSLabel(s string) bool {
	return dnsLabelRe.MatchString(s)
}

var (
	validatorOnce   sync.Once
	structValidator *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("dnslabel", func(fl validator.FieldLevel) bool {
			return dnsLabelRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
			return imageRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("envkey", func(fl validator.FieldLevel) bool {
			return envKeyRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("envvalue", func(fl validator.FieldLevel) bool {
			return IsSingleLine(fl.Field().String())
		})
		structValidator = v
	})
	return structValidator
}

func check(kind string, v interface{}) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(errors.ErrCodeInternal, "validation failed", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	sort.Strings(msgs)
	return errors.InvalidSpecf("invalid %s: %s", kind, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "dnslabel":
		return fmt.Sprintf("%s %q must be lowercase letters, digits and hyphens (max 63, no leading or trailing hyphen)", field, fe.Value())
	case "min", "max":
		return fmt.Sprintf("port %v must be between 1 and 65535", fe.Value())
	case "fqdn":
		return fmt.Sprintf("domain %q is not a fully qualified domain name", fe.Value())
	case "imageref":
		return fmt.Sprintf("image %q is not a valid image reference", fe.Value())
	case "envkey":
		return fmt.Sprintf("env key %q is not a valid variable name", fe.Value())
	case "envvalue":
		return fmt.Sprintf("%s must be a single line", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
