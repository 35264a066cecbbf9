package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/project"
)

func TestFSStore(t *testing.T) {
	root := t.TempDir()
	s := NewFS(root)

	t.Run("Write creates parents", func(t *testing.T) {
		if err := s.Write("/etc/nginx/conf.d/myapp/api.conf", []byte("server {}\n"), 0644); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(root, "etc/nginx/conf.d/myapp/api.conf"))
		if err != nil {
			t.Fatalf("file not written: %v", err)
		}
		if string(data) != "server {}\n" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("Write updates mode on overwrite", func(t *testing.T) {
		path := "/opt/projects/myapp/manage-project.sh"
		if err := s.Write(path, []byte("#!/bin/sh\n"), 0644); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := s.Write(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		info, err := os.Stat(s.Resolve(path))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0755 {
			t.Errorf("expected mode 0755, got %v", info.Mode().Perm())
		}
	})

	t.Run("Read", func(t *testing.T) {
		data, err := s.Read("/etc/nginx/conf.d/myapp/api.conf")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(data) != "server {}\n" {
			t.Errorf("unexpected content %q", data)
		}

		_, err = s.Read("/missing")
		if !IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
		if !errors.Is(err, errors.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		if !s.Exists("/etc/nginx/conf.d/myapp") {
			t.Error("expected directory to exist")
		}
		if s.Exists("/etc/nginx/conf.d/other") {
			t.Error("expected path not to exist")
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := s.MkdirAll("/opt/projects/shop"); err != nil {
			t.Fatal(err)
		}
		entries, err := s.List("/opt/projects")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 || entries[0].Name != "myapp" || entries[1].Name != "shop" {
			t.Errorf("unexpected entries %+v", entries)
		}
		if !entries[0].Dir {
			t.Error("expected directory entry")
		}

		entries, err = s.List("/nonexistent")
		if err != nil || len(entries) != 0 {
			t.Errorf("expected empty listing for missing dir, got %v, %v", entries, err)
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		if err := s.RemoveAll("/opt/projects/myapp"); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if s.Exists("/opt/projects/myapp/manage-project.sh") {
			t.Error("expected tree removed")
		}
		if err := s.RemoveAll("/opt/projects/myapp"); err != nil {
			t.Errorf("RemoveAll on missing path should succeed, got %v", err)
		}
		if err := s.RemoveAll("/"); err == nil {
			t.Error("expected refusal to remove root")
		}
	})

	t.Run("Resolve stays under root", func(t *testing.T) {
		got := s.Resolve("/../../etc/passwd")
		want := filepath.Join(root, "etc/passwd")
		if got != want {
			t.Errorf("Resolve() = %s, want %s", got, want)
		}
	})
}

func TestMockStore(t *testing.T) {
	m := NewMockStore()

	if err := m.Write("/opt/projects/myapp/services/api.yml", []byte("services: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.MkdirAll("/opt/projects/myapp/logs"); err != nil {
		t.Fatal(err)
	}

	if !m.Exists("/opt/projects/myapp") {
		t.Error("expected parent directory to exist")
	}
	if m.Content("/opt/projects/myapp/services/api.yml") != "services: {}\n" {
		t.Error("unexpected content")
	}

	entries, err := m.List("/opt/projects/myapp")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name != "logs" || entries[1].Name != "services" {
		t.Errorf("unexpected entries %+v", entries)
	}

	if _, err := m.Read("/missing"); !IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	if err := m.RemoveAll("/opt/projects/myapp"); err != nil {
		t.Fatal(err)
	}
	if m.Exists("/opt/projects/myapp/services/api.yml") || m.Exists("/opt/projects/myapp") {
		t.Error("expected tree removed")
	}
	if len(m.RemoveAllCalls) != 1 || m.RemoveAllCalls[0] != "/opt/projects/myapp" {
		t.Errorf("unexpected RemoveAll calls %v", m.RemoveAllCalls)
	}
}

func TestApply(t *testing.T) {
	artifacts := []project.Artifact{
		{Path: "/opt/projects/myapp", Dir: true, Mode: project.ModeDir},
		{Path: "/opt/projects/myapp/README.md", Content: "# myapp\n", Mode: project.ModeFile},
		{Path: "/opt/projects/myapp/manage-project.sh", Content: "#!/bin/sh\n", Mode: project.ModeExecutable},
		{Path: "/etc/nginx/conf.d/myapp.conf", Content: "include x;\n", Mode: project.ModeFile},
	}

	t.Run("writes in order", func(t *testing.T) {
		m := NewMockStore()
		if err := Apply(m, artifacts); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(m.WriteCalls) != 3 || len(m.MkdirAllCalls) != 1 {
			t.Fatalf("unexpected calls: writes=%v mkdirs=%v", m.WriteCalls, m.MkdirAllCalls)
		}
		if m.WriteCalls[0] != "/opt/projects/myapp/README.md" {
			t.Errorf("unexpected first write %s", m.WriteCalls[0])
		}
		if m.Files["/opt/projects/myapp/manage-project.sh"].Mode != 0755 {
			t.Error("expected executable mode")
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		m := NewMockStore()
		m.WriteFunc = func(path string, content []byte, mode os.FileMode) error {
			if filepath.Base(path) == "manage-project.sh" {
				return fmt.Errorf("disk full")
			}
			return nil
		}
		err := Apply(m, artifacts)
		if err == nil {
			t.Fatal("expected error")
		}
		if len(m.WriteCalls) != 2 {
			t.Errorf("expected 2 write attempts, got %d", len(m.WriteCalls))
		}
		if m.Exists("/etc/nginx/conf.d/myapp.conf") {
			t.Error("expected later artifacts to be skipped")
		}
		if !m.Exists("/opt/projects/myapp/README.md") {
			t.Error("expected earlier artifacts to stay")
		}
	})

	t.Run("on disk", func(t *testing.T) {
		s := NewFS(t.TempDir())
		if err := Apply(s, artifacts); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		info, err := os.Stat(s.Resolve("/opt/projects/myapp/manage-project.sh"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0755 {
			t.Errorf("expected 0755, got %v", info.Mode().Perm())
		}
	})
}
