package generator

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/projctl/internal/compose"
	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/project"
)

var myapp = project.ProjectSpec{Name: "myapp", Domain: "myapp.example.com", DefaultPort: 3000}

func newGenerator() *Generator {
	return New(config.New())
}

func TestGenerate_IsPure(t *testing.T) {
	g := newGenerator()
	svc := project.ServiceSpec{Name: "api", Port: 3001, Env: map[string]string{"B": "2", "A": "1"}}

	first, err := g.Generate(svc, myapp)
	require.NoError(t, err)
	second, err := g.Generate(svc, myapp)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_Upstream(t *testing.T) {
	g := newGenerator()

	for _, svc := range []project.ServiceSpec{
		{Name: "api", Port: 3001},
		{Name: "worker-2", Port: 65535},
		{Name: "a", Port: 1},
	} {
		t.Run(svc.Name, func(t *testing.T) {
			b, err := g.Generate(svc, myapp)
			require.NoError(t, err)

			upstream := "upstream myapp_" + svc.Name + " {\n    server " + svc.Name + ":" + strconv.Itoa(svc.Port) + ";\n"
			assert.Contains(t, b.NginxConfig, upstream)
			assert.Equal(t, 1, strings.Count(b.NginxConfig, "    server "), "expected exactly one upstream server")
		})
	}
}

func TestGenerate_Healthcheck(t *testing.T) {
	b, err := newGenerator().Generate(project.ServiceSpec{Name: "api", Port: 3001}, myapp)
	require.NoError(t, err)

	f, err := compose.Parse([]byte(b.ComposeManifest))
	require.NoError(t, err)
	hc := f.Services["api"].Healthcheck
	require.NotNil(t, hc)
	assert.Equal(t, compose.Command{"CMD", "curl", "-f", "http://localhost:3001/health"}, hc.Test)
	assert.Equal(t, "30s", hc.Interval)
	assert.Contains(t, b.ComposeManifest, `test: ["CMD", "curl", "-f", "http://localhost:3001/health"]`)
}

func TestGenerate_DefaultDomain(t *testing.T) {
	b, err := newGenerator().Generate(project.ServiceSpec{Name: "api", Port: 3001}, myapp)
	require.NoError(t, err)
	assert.Contains(t, b.NginxConfig, "server_name myapp.example.com;")
}

func TestGenerate_ServiceDomain(t *testing.T) {
	svc := project.ServiceSpec{Name: "admin", Port: 3003, Domain: "admin.myapp.example.com"}
	b, err := newGenerator().Generate(svc, myapp)
	require.NoError(t, err)
	assert.Contains(t, b.NginxConfig, "server_name admin.myapp.example.com;")
	assert.NotContains(t, b.NginxConfig, "server_name myapp.example.com;")
}

func TestGenerate_NginxLocations(t *testing.T) {
	b, err := newGenerator().Generate(project.ServiceSpec{Name: "api", Port: 3001}, myapp)
	require.NoError(t, err)

	conf := b.NginxConfig
	for _, want := range []string{
		"limit_req_zone $binary_remote_addr zone=myapp_api:10m rate=10r/s;",
		"listen 80;",
		"location / {",
		"location = /health {",
		"location /api/ {",
		"location /static/ {",
		"limit_req zone=myapp_api burst=20 nodelay;",
		"expires 30d;",
		`add_header Cache-Control "public, immutable";`,
		"access_log off;",
		"keepalive 32;",
	} {
		assert.Contains(t, conf, want)
	}

	// Every location carries the same proxy settings
	assert.Equal(t, 4, strings.Count(conf, "proxy_pass http://myapp_api;"))
	assert.Equal(t, 4, strings.Count(conf, "proxy_set_header X-Forwarded-Proto $scheme;"))
	assert.Equal(t, 4, strings.Count(conf, "proxy_read_timeout 60s;"))
}

func TestGenerate_Manifest(t *testing.T) {
	svc := project.ServiceSpec{Name: "api", Port: 3001}
	b, err := newGenerator().Generate(svc, myapp)
	require.NoError(t, err)

	f, err := compose.Parse([]byte(b.ComposeManifest))
	require.NoError(t, err)
	require.Contains(t, f.Services, "api")

	s := f.Services["api"]
	assert.Equal(t, "api:latest", s.Image)
	assert.Equal(t, "3001", s.Environment["PORT"])
	assert.Equal(t, []string{"api-data:/app/data"}, s.Volumes)
	assert.Equal(t, []string{"proxy"}, s.Networks)
	assert.Empty(t, s.EnvFile)

	require.NotNil(t, s.Deploy)
	assert.Equal(t, 2, s.Deploy.Replicas)
	assert.Equal(t, &compose.RestartPolicy{Condition: "on-failure", Delay: "5s", MaxAttempts: 3, Window: "120s"}, s.Deploy.RestartPolicy)
	assert.Equal(t, &compose.UpdateConfig{Parallelism: 1, Delay: "10s", Order: "start-first", FailureAction: "rollback"}, s.Deploy.UpdateConfig)
	assert.Equal(t, "myapp", s.Deploy.Labels[compose.LabelProject])

	assert.Contains(t, f.Volumes, "api-data")
	assert.True(t, f.Networks["proxy"].External)

	specs, err := f.Specs()
	require.NoError(t, err)
	assert.Equal(t, []project.ServiceSpec{svc}, specs)
}

func TestGenerate_EnvAndImage(t *testing.T) {
	svc := project.ServiceSpec{
		Name:  "web",
		Port:  8080,
		Image: "ghcr.io/acme/web:1.4",
		Env:   map[string]string{"NODE_ENV": "production", "DATABASE_URL": "postgres://db/app"},
	}
	b, err := newGenerator().Generate(svc, myapp)
	require.NoError(t, err)

	assert.Equal(t, "DATABASE_URL=postgres://db/app\nNODE_ENV=production\n", b.EnvFile)
	assert.Contains(t, b.ComposeManifest, "image: ghcr.io/acme/web:1.4")
	assert.Contains(t, b.ComposeManifest, "- web.env")
}

func TestGenerate_DeployScript(t *testing.T) {
	b, err := newGenerator().Generate(project.ServiceSpec{Name: "api", Port: 3001}, myapp)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.DeployScript, "#!/usr/bin/env bash\n"))
	assert.Contains(t, b.DeployScript, "set -euo pipefail")
	assert.Contains(t, b.DeployScript, "MANIFEST=/opt/projects/myapp/services/api.yml")
	assert.Contains(t, b.DeployScript, "STACK=myapp")
	assert.Contains(t, b.DeployScript, "NGINX_SERVICE=nginx")
}

func TestGenerate_Standalone(t *testing.T) {
	b, err := newGenerator().Generate(
		project.ServiceSpec{Name: "api", Port: 3001},
		project.ProjectSpec{Domain: "api.example.com"},
	)
	require.NoError(t, err)
	assert.Contains(t, b.NginxConfig, "upstream api {")
	assert.Contains(t, b.NginxConfig, "server_name api.example.com;")
	assert.Contains(t, b.DeployScript, "STACK=api")
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		svc  project.ServiceSpec
		proj project.ProjectSpec
	}{
		{"empty name", project.ServiceSpec{Port: 3001}, myapp},
		{"port out of range", project.ServiceSpec{Name: "api", Port: 0}, myapp},
		{"injection in name", project.ServiceSpec{Name: "api;}", Port: 3001}, myapp},
		{"bad project", project.ServiceSpec{Name: "api", Port: 3001}, project.ProjectSpec{Name: "My App", Domain: "x.example.com", DefaultPort: 3000}},
		{"standalone without domain", project.ServiceSpec{Name: "api", Port: 3001}, project.ProjectSpec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := newGenerator().Generate(tt.svc, tt.proj)
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, errors.ErrInvalidSpec), "expected ErrInvalidSpec, got %v", err)
		})
	}
}

func TestProjectConfig(t *testing.T) {
	g := newGenerator()

	t.Run("fallback until domain is served", func(t *testing.T) {
		conf := g.ProjectConfig(myapp, nil).String()
		assert.Contains(t, conf, "include /etc/nginx/conf.d/myapp/*.conf;")
		assert.Contains(t, conf, "server_name myapp.example.com;")
		assert.Contains(t, conf, "return 503;")
	})

	t.Run("other domains keep the fallback", func(t *testing.T) {
		services := []project.ServiceSpec{{Name: "admin", Port: 3003, Domain: "admin.myapp.example.com"}}
		conf := g.ProjectConfig(myapp, services).String()
		assert.Contains(t, conf, "return 503;")
	})

	t.Run("fallback dropped once a service claims the domain", func(t *testing.T) {
		services := []project.ServiceSpec{{Name: "api", Port: 3001}}
		conf := g.ProjectConfig(myapp, services).String()
		assert.Contains(t, conf, "include /etc/nginx/conf.d/myapp/*.conf;")
		assert.NotContains(t, conf, "return 503;")
		assert.NotContains(t, conf, "server_name")
	})
}

func TestDomainOwner(t *testing.T) {
	services := []project.ServiceSpec{
		{Name: "web", Port: 80},
		{Name: "api", Port: 3001},
		{Name: "admin", Port: 3003, Domain: "admin.myapp.example.com"},
	}
	assert.Equal(t, "api", DomainOwner(myapp, services, "myapp.example.com"))
	assert.Equal(t, "admin", DomainOwner(myapp, services, "admin.myapp.example.com"))
	assert.Equal(t, "", DomainOwner(myapp, services, "other.example.com"))
}
