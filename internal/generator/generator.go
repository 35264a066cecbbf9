// Package generator turns a service spec into the files that run it
// behind nginx on Docker Swarm: an nginx config, a stack manifest and a
// deploy script.
//
// Generation is pure. The same input always yields byte-identical output,
// and nothing is written; persisting a Bundle is the caller's job.
package generator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ksyq12/projctl/internal/compose"
	"github.com/ksyq12/projctl/internal/config"
	"github.com/ksyq12/projctl/internal/nginx"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/template"
)

// Fixed service settings, identical for every generated service.
const (
	Replicas     = 2
	DataMount    = "/app/data"
	HealthPath   = "/health"
	RateLimit    = "10r/s"
	ZoneSize     = "10m"
	APIBurst     = "20"
	Keepalive    = "32"
	ProxyTimeout = "60s"
	StaticExpiry = "30d"
)

// Bundle holds the generated text for one service.
type Bundle struct {
	NginxConfig     string
	ComposeManifest string
	DeployScript    string
	// EnvFile is empty when the service has no environment.
	EnvFile string
}

// Generator renders service bundles for a given installation layout.
type Generator struct {
	cfg *config.Config
}

// New creates a Generator using cfg for paths, network and nginx service.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate renders the bundle for svc inside proj. proj may have an empty
// Name, which renders a standalone service whose stack is named after the
// service; its Domain is still required unless svc sets one.
func (g *Generator) Generate(svc project.ServiceSpec, proj project.ProjectSpec) (*Bundle, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if proj.Name != "" {
		if err := proj.Validate(); err != nil {
			return nil, err
		}
	} else if err := project.ValidateDomain(svc.EffectiveDomain(proj.Domain)); err != nil {
		return nil, err
	}

	manifest, err := g.Manifest(svc, proj)
	if err != nil {
		return nil, err
	}

	stack := StackName(proj, svc)
	script, err := template.Render(template.DeployScript, template.DeployData{
		Project:      stack,
		Service:      svc.Name,
		Manifest:     g.cfg.ServiceManifest(stack, svc.Name),
		Network:      g.cfg.Network,
		NginxService: g.cfg.NginxService,
	})
	if err != nil {
		return nil, err
	}

	var envFile string
	if len(svc.Env) > 0 {
		if envFile, err = project.MarshalEnv(svc.Env); err != nil {
			return nil, err
		}
		envFile += "\n"
	}

	return &Bundle{
		NginxConfig:     ServiceConfig(svc, proj).String(),
		ComposeManifest: manifest,
		DeployScript:    script,
		EnvFile:         envFile,
	}, nil
}

// StackName is the Swarm stack a service is deployed into.
func StackName(proj project.ProjectSpec, svc project.ServiceSpec) string {
	if proj.Name == "" {
		return svc.Name
	}
	return proj.Name
}

// UpstreamName is the nginx upstream (and rate limit zone) of a service.
// It is qualified by project so that services of different projects can
// share a name.
func UpstreamName(projectName, service string) string {
	if projectName == "" {
		return service
	}
	return projectName + "_" + service
}

// ServiceConfig builds the nginx configuration for svc.
func ServiceConfig(svc project.ServiceSpec, proj project.ProjectSpec) nginx.Config {
	upstream := UpstreamName(proj.Name, svc.Name)
	domain := svc.EffectiveDomain(proj.Domain)

	header := fmt.Sprintf("Service %s", svc.Name)
	if proj.Name != "" {
		header += fmt.Sprintf(" (project %s)", proj.Name)
	}

	return nginx.Config{
		nginx.Comment(header + "\nGenerated by projctl. Re-running add-service overwrites this file."),
		nginx.D("limit_req_zone", "$binary_remote_addr", "zone="+upstream+":"+ZoneSize, "rate="+RateLimit),
		nginx.Blank(),
		nginx.Upstream(upstream,
			nginx.D("server", svc.Name+":"+strconv.Itoa(svc.Port)),
			nginx.D("keepalive", Keepalive),
		),
		nginx.Server(
			nginx.D("listen", "80"),
			nginx.D("server_name", domain),
			nginx.Blank(),
			proxyLocation(upstream, []string{"/"}),
			proxyLocation(upstream, []string{"=", HealthPath},
				nginx.D("access_log", "off"),
			),
			proxyLocation(upstream, []string{"/api/"},
				nginx.D("limit_req", "zone="+upstream, "burst="+APIBurst, "nodelay"),
			),
			proxyLocation(upstream, []string{"/static/"},
				nginx.D("expires", StaticExpiry),
				nginx.D("add_header", "Cache-Control", "public, immutable"),
			),
		),
	}
}

// proxyLocation builds a location that proxies to upstream with the fixed
// header and timeout settings. extra directives come first.
func proxyLocation(upstream string, match []string, extra ...*nginx.Directive) *nginx.Directive {
	loc := nginx.Location(match, extra...)
	return loc.Append(
		nginx.D("proxy_pass", "http://"+upstream),
		nginx.D("proxy_http_version", "1.1"),
		nginx.D("proxy_set_header", "Host", "$host"),
		nginx.D("proxy_set_header", "X-Real-IP", "$remote_addr"),
		nginx.D("proxy_set_header", "X-Forwarded-For", "$proxy_add_x_forwarded_for"),
		nginx.D("proxy_set_header", "X-Forwarded-Proto", "$scheme"),
		nginx.D("proxy_set_header", "Upgrade", "$http_upgrade"),
		nginx.D("proxy_set_header", "Connection", "upgrade"),
		nginx.D("proxy_connect_timeout", ProxyTimeout),
		nginx.D("proxy_send_timeout", ProxyTimeout),
		nginx.D("proxy_read_timeout", ProxyTimeout),
	)
}

// Manifest renders the stack manifest for svc.
func (g *Generator) Manifest(svc project.ServiceSpec, proj project.ProjectSpec) (string, error) {
	return compose.Marshal(g.ComposeFile(svc, proj))
}

// ComposeFile builds the stack manifest for svc.
func (g *Generator) ComposeFile(svc project.ServiceSpec, proj project.ProjectSpec) *compose.File {
	port := strconv.Itoa(svc.Port)
	volume := svc.Name + "-data"

	service := compose.Service{
		Image:       svc.EffectiveImage(),
		Environment: map[string]string{"PORT": port},
		Volumes:     []string{volume + ":" + DataMount},
		Networks:    []string{g.cfg.Network},
		Healthcheck: &compose.Healthcheck{
			Test:        compose.Command{"CMD", "curl", "-f", "http://localhost:" + port + HealthPath},
			Interval:    "30s",
			Timeout:     "10s",
			Retries:     3,
			StartPeriod: "40s",
		},
		Deploy: &compose.Deploy{
			Replicas: Replicas,
			Labels:   compose.Labels(proj.Name, svc),
			RestartPolicy: &compose.RestartPolicy{
				Condition:   "on-failure",
				Delay:       "5s",
				MaxAttempts: 3,
				Window:      "120s",
			},
			UpdateConfig: &compose.UpdateConfig{
				Parallelism:   1,
				Delay:         "10s",
				Order:         "start-first",
				FailureAction: "rollback",
			},
		},
	}
	if len(svc.Env) > 0 {
		service.EnvFile = []string{svc.Name + ".env"}
	}

	return &compose.File{
		Version:  compose.Version,
		Services: map[string]compose.Service{svc.Name: service},
		Volumes:  map[string]compose.Volume{volume: {}},
		Networks: map[string]compose.Network{g.cfg.Network: {External: true}},
	}
}

// ProjectConfig builds the project-level nginx vhost. It includes every
// service config of the project and, until a service answers for the
// project domain, serves 503 for it.
func (g *Generator) ProjectConfig(proj project.ProjectSpec, services []project.ServiceSpec) nginx.Config {
	conf := nginx.Config{
		nginx.Comment(fmt.Sprintf("Project %s (%s)\nGenerated by projctl. Service configs are included from %s.",
			proj.Name, proj.Domain, g.cfg.ServiceConfDir(proj.Name))),
		nginx.D("include", g.cfg.ServiceConfDir(proj.Name)+"/*.conf"),
	}

	if DomainOwner(proj, services, proj.Domain) != "" {
		return conf
	}

	return append(conf,
		nginx.Blank(),
		nginx.Comment("No service serves "+proj.Domain+" yet."),
		nginx.Server(
			nginx.D("listen", "80"),
			nginx.D("server_name", proj.Domain),
			nginx.Blank(),
			nginx.Location([]string{"/"},
				nginx.D("return", "503"),
			),
		),
	)
}

// DomainOwner returns the first service (by name) whose effective domain is
// domain, or "" when there is none.
func DomainOwner(proj project.ProjectSpec, services []project.ServiceSpec, domain string) string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		if s.EffectiveDomain(proj.Domain) == domain {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}
