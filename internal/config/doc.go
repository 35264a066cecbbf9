// Package config loads the projctl settings.
//
// Settings come from three layers, later ones winning:
//   - built-in defaults (see New)
//   - an optional YAML file, ~/.config/projctl/config.yaml or the file
//     passed with --config
//   - PROJCTL_* environment variables (PROJCTL_PROJECTS_DIR, ...)
//
// Example config.yaml:
//
//	projects_dir: /opt/projects
//	nginx_conf_dir: /etc/nginx/conf.d
//	nginx_service: nginx
//	network: proxy
//	backup_dir: /opt/backups
//	default_port: 3000
//
// Root is prefixed to every absolute path when files are touched, which lets
// tests and packaging runs target a scratch directory.
//
// # Thread Safety
//
// Config is read once at startup and treated as immutable afterwards.
package config
