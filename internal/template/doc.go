// Package template renders the shell scripts and README that projctl writes
// next to generated configuration.
//
// Templates are embedded in the binary with go:embed:
//
//	scripts/deploy.sh.tmpl          per-service deploy script
//	scripts/manage-project.sh.tmpl  per-project management wrapper
//	docs/README.md.tmpl             per-project README
//
// Every value interpolated into a script goes through the shquote function.
//
//	script, err := template.Render(template.DeployScript, template.DeployData{
//	    Project:      "myapp",
//	    Service:      "api",
//	    Manifest:     "/opt/projects/myapp/services/api.yml",
//	    Network:      "proxy",
//	    NginxService: "nginx",
//	})
//
// Nginx configuration is not produced here; see package nginx.
package template
