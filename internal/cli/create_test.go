package cli

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ksyq12/projctl/internal/errors"
)

func TestRunCreate(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		setup       func(*testing.T, *TestHelper)
		wantErr     error
		errContains string
		validate    func(*testing.T, *TestHelper, string)
	}{
		{
			name: "create project with default port",
			args: []string{"myapp", "myapp.example.com"},
			validate: func(t *testing.T, h *TestHelper, out string) {
				meta := h.Store.Content("/opt/projects/myapp/project.yaml")
				if !strings.Contains(meta, "name: myapp") || !strings.Contains(meta, "default_port: 3000") {
					t.Errorf("unexpected project.yaml:\n%s", meta)
				}
				if !strings.Contains(meta, "2026-10-19T10:30:00Z") {
					t.Errorf("expected creation time from clock, got:\n%s", meta)
				}
				for _, dir := range []string{"nginx", "services", "ssl", "logs"} {
					if !h.Store.Exists("/opt/projects/myapp/" + dir) {
						t.Errorf("expected directory %s", dir)
					}
				}
				if f := h.Store.Files["/opt/projects/myapp/manage-project.sh"]; f.Mode != 0755 {
					t.Errorf("manage-project.sh mode = %v, want 0755", f.Mode)
				}
				vhost := h.Store.Content("/etc/nginx/conf.d/myapp.conf")
				if !strings.Contains(vhost, "return 503;") {
					t.Errorf("expected 503 fallback in new vhost:\n%s", vhost)
				}
				if !strings.Contains(out, "Project myapp created") {
					t.Errorf("unexpected output: %s", out)
				}
			},
		},
		{
			name: "create project with explicit port",
			args: []string{"myapp", "myapp.example.com", "8080"},
			validate: func(t *testing.T, h *TestHelper, out string) {
				if meta := h.Store.Content("/opt/projects/myapp/project.yaml"); !strings.Contains(meta, "default_port: 8080") {
					t.Errorf("expected port 8080 in project.yaml:\n%s", meta)
				}
			},
		},
		{
			name: "existing project",
			args: []string{"myapp", "myapp.example.com"},
			setup: func(t *testing.T, h *TestHelper) {
				seedProject(t, h, "myapp", "myapp.example.com")
			},
			wantErr: errors.ErrProjectExists,
		},
		{
			name:        "invalid project name",
			args:        []string{"My_App", "myapp.example.com"},
			wantErr:     errors.ErrInvalidSpec,
			errContains: "name",
		},
		{
			name:        "invalid domain",
			args:        []string{"myapp", "not a domain"},
			wantErr:     errors.ErrInvalidSpec,
			errContains: "domain",
		},
		{
			name:        "invalid port",
			args:        []string{"myapp", "myapp.example.com", "http"},
			wantErr:     errors.ErrInvalidSpec,
			errContains: "invalid port",
		},
		{
			name:    "port out of range",
			args:    []string{"myapp", "myapp.example.com", "70000"},
			wantErr: errors.ErrInvalidSpec,
		},
		{
			name: "dry run prints artifacts",
			args: []string{"myapp", "myapp.example.com"},
			setup: func(t *testing.T, h *TestHelper) {
				dryRun = true
			},
			validate: func(t *testing.T, h *TestHelper, out string) {
				assertNoWrites(t, h.Store)
				for _, want := range []string{
					"mkdir /opt/projects/myapp/services",
					"==> /opt/projects/myapp/manage-project.sh (0755)",
					"==> /etc/nginx/conf.d/myapp.conf (0644)",
				} {
					if !strings.Contains(out, want) {
						t.Errorf("expected %q in output:\n%s", want, out)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t)
			buf := captureOutput(t)
			if tt.setup != nil {
				tt.setup(t, h)
			}

			err := runCreate(nil, tt.args)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				if errors.Is(err, errors.ErrInvalidSpec) {
					assertNoWrites(t, h.Store)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, h, buf.String())
			}
		})
	}
}

func TestRunCreate_JSON(t *testing.T) {
	h := NewTestHelper(t)
	buf := captureOutput(t)
	jsonOutput = true

	if err := runCreate(nil, []string{"myapp", "myapp.example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	decodeJSON(t, buf, &result)
	if result["project"] != "myapp" || result["path"] != "/opt/projects/myapp" {
		t.Errorf("unexpected result %v", result)
	}
	if !h.Store.Exists("/opt/projects/myapp/project.yaml") {
		t.Error("expected project.yaml to be written")
	}
}

func TestRunCreate_StopsOnWriteFailure(t *testing.T) {
	h := NewTestHelper(t)
	captureOutput(t)
	h.Store.WriteFunc = func(path string, content []byte, mode os.FileMode) error {
		if strings.HasSuffix(path, "manage-project.sh") {
			return errors.WrapSubject(errors.ErrCodeStorage, path, fmt.Errorf("disk full"))
		}
		return nil
	}

	err := runCreate(nil, []string{"myapp", "myapp.example.com"})
	if !errors.Is(err, errors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if h.Store.Exists("/opt/projects/myapp/README.md") {
		t.Error("files after the failing write should not be written")
	}
	if !h.Store.Exists("/opt/projects/myapp/project.yaml") {
		t.Error("files before the failing write are left in place")
	}
}

func TestRunCreate_ConfigError(t *testing.T) {
	NewTestHelper(t)
	deps.ConfigLoader = &MockConfigLoader{LoadErr: errors.Wrap(errors.ErrCodeConfig, "bad config", fmt.Errorf("boom"))}

	err := runCreate(nil, []string{"myapp", "myapp.example.com"})
	if !errors.Is(err, errors.ErrConfigInvalid) {
		t.Errorf("expected config error, got %v", err)
	}
}
