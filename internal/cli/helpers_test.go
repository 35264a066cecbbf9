package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/scaffold"
	"github.com/ksyq12/projctl/internal/store"
)

// captureOutput redirects user-facing output into a buffer for the test
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	output.SetOutput(buf)
	t.Cleanup(func() { output.SetOutput(nil) })
	return buf
}

// seedProject writes a project and its services into the helper's store
func seedProject(t *testing.T, h *TestHelper, name, domain string, services ...project.ServiceSpec) project.ProjectSpec {
	t.Helper()

	s := scaffold.New(h.Config)
	proj := project.ProjectSpec{Name: name, Domain: domain, DefaultPort: 3000, CreatedAt: MockNow}
	artifacts, err := s.CreateProject(proj)
	if err != nil {
		t.Fatalf("CreateProject(%s) failed: %v", name, err)
	}
	if err := store.Apply(h.Store, artifacts); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	var existing []project.ServiceSpec
	for _, svc := range services {
		artifacts, err := s.AddService(proj, svc, existing)
		if err != nil {
			t.Fatalf("AddService(%s) failed: %v", svc.Name, err)
		}
		if err := store.Apply(h.Store, artifacts); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		existing = scaffold.Merge(existing, svc)
	}

	// Seeding is not part of what the test observes
	h.Store.WriteCalls = nil
	h.Store.MkdirAllCalls = nil
	return proj
}

// assertNoWrites fails when anything was written to the store
func assertNoWrites(t *testing.T, s *store.MockStore) {
	t.Helper()
	if len(s.WriteCalls) != 0 || len(s.MkdirAllCalls) != 0 || len(s.RemoveAllCalls) != 0 {
		t.Errorf("expected no store changes, got writes=%v mkdirs=%v removes=%v",
			s.WriteCalls, s.MkdirAllCalls, s.RemoveAllCalls)
	}
}

// decodeJSON decodes captured JSON output into v
func decodeJSON(t *testing.T, buf *bytes.Buffer, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
}
