package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ksyq12/projctl/internal/errors"
)

func TestConfig(t *testing.T) {
	// Create temp directory for test config
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	configDir := filepath.Join(tempDir, ".config", "projctl")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	t.Run("New", func(t *testing.T) {
		cfg := New()
		if cfg.ProjectsDir != "/opt/projects" {
			t.Errorf("expected /opt/projects, got %s", cfg.ProjectsDir)
		}
		if cfg.NginxConfDir != "/etc/nginx/conf.d" {
			t.Errorf("expected /etc/nginx/conf.d, got %s", cfg.NginxConfDir)
		}
		if cfg.DefaultPort != 3000 {
			t.Errorf("expected default port 3000, got %d", cfg.DefaultPort)
		}
	})

	t.Run("LoadNonexistent", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ProjectsDir != DefaultProjectsDir {
			t.Errorf("expected defaults, got %s", cfg.ProjectsDir)
		}
		if cfg.File != "" {
			t.Errorf("expected no config file, got %s", cfg.File)
		}
	})

	t.Run("LoadDefaultLocation", func(t *testing.T) {
		path := filepath.Join(configDir, "config.yaml")
		content := "projects_dir: /srv/projects\nnginx_service: edge_nginx\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		defer os.Remove(path)

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ProjectsDir != "/srv/projects" {
			t.Errorf("expected /srv/projects, got %s", cfg.ProjectsDir)
		}
		if cfg.NginxService != "edge_nginx" {
			t.Errorf("expected edge_nginx, got %s", cfg.NginxService)
		}
		// Unset keys keep their defaults
		if cfg.NginxConfDir != DefaultNginxConfDir {
			t.Errorf("expected default nginx conf dir, got %s", cfg.NginxConfDir)
		}
		if cfg.File != path {
			t.Errorf("expected File %s, got %s", path, cfg.File)
		}
	})

	t.Run("ExplicitFile", func(t *testing.T) {
		path := filepath.Join(tempDir, "custom.yaml")
		content := "default_port: 8080\nnetwork: edge\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.DefaultPort != 8080 {
			t.Errorf("expected 8080, got %d", cfg.DefaultPort)
		}
		if cfg.Network != "edge" {
			t.Errorf("expected edge, got %s", cfg.Network)
		}
	})

	t.Run("ExplicitFileMissing", func(t *testing.T) {
		_, err := Load(filepath.Join(tempDir, "missing.yaml"))
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
		if !errors.Is(err, errors.ErrConfigInvalid) {
			t.Errorf("expected ErrConfigInvalid, got %v", err)
		}
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("PROJCTL_PROJECTS_DIR", "/data/projects")
		t.Setenv("PROJCTL_DEFAULT_PORT", "4000")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ProjectsDir != "/data/projects" {
			t.Errorf("expected /data/projects, got %s", cfg.ProjectsDir)
		}
		if cfg.DefaultPort != 4000 {
			t.Errorf("expected 4000, got %d", cfg.DefaultPort)
		}
	})

	t.Run("InvalidValues", func(t *testing.T) {
		path := filepath.Join(tempDir, "bad.yaml")
		if err := os.WriteFile(path, []byte("projects_dir: relative/dir\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for relative projects_dir")
		}
		if !errors.Is(err, errors.ErrConfigInvalid) {
			t.Errorf("expected ErrConfigInvalid, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"relative root", func(c *Config) { c.Root = "tmp" }, true},
		{"relative nginx conf dir", func(c *Config) { c.NginxConfDir = "conf.d" }, true},
		{"empty nginx service", func(c *Config) { c.NginxService = "" }, true},
		{"empty network", func(c *Config) { c.Network = "" }, true},
		{"port zero", func(c *Config) { c.DefaultPort = 0 }, true},
		{"port too large", func(c *Config) { c.DefaultPort = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProjectDir(t *testing.T) {
	cfg := New()
	if got := cfg.ProjectDir("myapp"); got != "/opt/projects/myapp" {
		t.Errorf("ProjectDir() = %s", got)
	}
}

func TestLayout(t *testing.T) {
	cfg := New()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"meta", cfg.ProjectMeta("myapp"), "/opt/projects/myapp/project.yaml"},
		{"manage", cfg.ManageScript("myapp"), "/opt/projects/myapp/manage-project.sh"},
		{"readme", cfg.Readme("myapp"), "/opt/projects/myapp/README.md"},
		{"manifest", cfg.ServiceManifest("myapp", "api"), "/opt/projects/myapp/services/api.yml"},
		{"env", cfg.ServiceEnv("myapp", "api"), "/opt/projects/myapp/services/api.env"},
		{"deploy", cfg.ServiceDeployScript("myapp", "api"), "/opt/projects/myapp/services/api.deploy.sh"},
		{"vhost", cfg.ProjectVhost("myapp"), "/etc/nginx/conf.d/myapp.conf"},
		{"conf dir", cfg.ServiceConfDir("myapp"), "/etc/nginx/conf.d/myapp"},
		{"service conf", cfg.ServiceConf("myapp", "api"), "/etc/nginx/conf.d/myapp/api.conf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}
