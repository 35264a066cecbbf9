package cli

import (
	"strings"
	"testing"

	"github.com/ksyq12/projctl/internal/errors"
)

func TestRunTemplate(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		image      string
		json       bool
		wantErr    error
		wantOutput []string
	}{
		{
			name: "prints all three files",
			args: []string{"api", "3000", "api.example.com"},
			wantOutput: []string{
				"==> api.conf",
				"upstream api {",
				"server api:3000;",
				"server_name api.example.com;",
				"==> api.yml",
				"replicas: 2",
				"==> api.deploy.sh",
				"docker stack deploy",
			},
		},
		{
			name:       "custom image",
			args:       []string{"api", "3000", "api.example.com"},
			image:      "ghcr.io/acme/api:2",
			wantOutput: []string{"image: ghcr.io/acme/api:2"},
		},
		{
			name:       "json",
			args:       []string{"api", "3000", "api.example.com"},
			json:       true,
			wantOutput: []string{`"nginx":`, `"compose":`, `"deploy":`},
		},
		{
			name:    "invalid port",
			args:    []string{"api", "99999", "api.example.com"},
			wantErr: errors.ErrInvalidSpec,
		},
		{
			name:    "invalid domain",
			args:    []string{"api", "3000", "localhost"},
			wantErr: errors.ErrInvalidSpec,
		},
		{
			name:    "invalid name",
			args:    []string{"-api", "3000", "api.example.com"},
			wantErr: errors.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t)
			buf := captureOutput(t)
			templateImage = tt.image
			jsonOutput = tt.json
			t.Cleanup(func() { templateImage = "" })

			err := runTemplate(nil, tt.args)

			assertNoWrites(t, h.Store)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if buf.Len() != 0 {
					t.Errorf("expected no output on error, got:\n%s", buf.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out := buf.String()
			for _, want := range tt.wantOutput {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestRunTemplate_Deterministic(t *testing.T) {
	NewTestHelper(t)
	buf := captureOutput(t)
	args := []string{"api", "3000", "api.example.com"}

	if err := runTemplate(nil, args); err != nil {
		t.Fatal(err)
	}
	first := buf.String()
	buf.Reset()
	if err := runTemplate(nil, args); err != nil {
		t.Fatal(err)
	}
	if buf.String() != first {
		t.Error("template output should be identical for identical input")
	}
}
