package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ksyq12/projctl/internal/errors"
)

// Config represents the application configuration
type Config struct {
	// Root is the directory every absolute path is resolved under ("/" in
	// production).
	Root         string `mapstructure:"root"`
	ProjectsDir  string `mapstructure:"projects_dir"`
	NginxConfDir string `mapstructure:"nginx_conf_dir"`
	NginxService string `mapstructure:"nginx_service"`
	Network      string `mapstructure:"network"`
	BackupDir    string `mapstructure:"backup_dir"`
	DefaultPort  int    `mapstructure:"default_port"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// configDir is the default config directory
const configDir = ".config/projctl"
const configName = "config"
const envPrefix = "PROJCTL"

// Default values
const (
	DefaultRoot         = "/"
	DefaultProjectsDir  = "/opt/projects"
	DefaultNginxConfDir = "/etc/nginx/conf.d"
	DefaultNginxService = "nginx"
	DefaultNetwork      = "proxy"
	DefaultBackupDir    = "/opt/backups"
	DefaultPort         = 3000
)

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Root:         DefaultRoot,
		ProjectsDir:  DefaultProjectsDir,
		NginxConfDir: DefaultNginxConfDir,
		NginxService: DefaultNginxService,
		Network:      DefaultNetwork,
		BackupDir:    DefaultBackupDir,
		DefaultPort:  DefaultPort,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the default config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+".yaml"), nil
}

// Load reads the configuration. An explicit file must exist; without one the
// default location is tried and a missing file yields the defaults.
// PROJCTL_* environment variables override both.
func Load(file string) (*Config, error) {
	v := newViper()

	if file != "" {
		v.SetConfigFile(file)
	} else if dir, err := ConfigDir(); err == nil {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.WrapSubject(errors.ErrCodeConfig, v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to decode config", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := New()
	v.SetDefault("root", d.Root)
	v.SetDefault("projects_dir", d.ProjectsDir)
	v.SetDefault("nginx_conf_dir", d.NginxConfDir)
	v.SetDefault("nginx_service", d.NginxService)
	v.SetDefault("network", d.Network)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("default_port", d.DefaultPort)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Validate checks that directories are absolute and the default port is usable
func (c *Config) Validate() error {
	dirs := map[string]string{
		"root":           c.Root,
		"projects_dir":   c.ProjectsDir,
		"nginx_conf_dir": c.NginxConfDir,
		"backup_dir":     c.BackupDir,
	}
	for _, key := range []string{"root", "projects_dir", "nginx_conf_dir", "backup_dir"} {
		if !filepath.IsAbs(dirs[key]) {
			return &errors.Error{
				Code:    errors.ErrCodeConfig,
				Message: fmt.Sprintf("%s must be an absolute path, got %q", key, dirs[key]),
			}
		}
	}
	if c.NginxService == "" {
		return &errors.Error{Code: errors.ErrCodeConfig, Message: "nginx_service must not be empty"}
	}
	if c.Network == "" {
		return &errors.Error{Code: errors.ErrCodeConfig, Message: "network must not be empty"}
	}
	if c.DefaultPort < 1 || c.DefaultPort > 65535 {
		return &errors.Error{
			Code:    errors.ErrCodeConfig,
			Message: fmt.Sprintf("default_port must be between 1 and 65535, got %d", c.DefaultPort),
		}
	}
	return nil
}

// ProjectDir returns the directory holding a project's files
func (c *Config) ProjectDir(project string) string {
	return filepath.Join(c.ProjectsDir, project)
}

// Settings returns the effective settings as a flat map for display
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"root":           c.Root,
		"projects_dir":   c.ProjectsDir,
		"nginx_conf_dir": c.NginxConfDir,
		"nginx_service":  c.NginxService,
		"network":        c.Network,
		"backup_dir":     c.BackupDir,
		"default_port":   c.DefaultPort,
	}
}
