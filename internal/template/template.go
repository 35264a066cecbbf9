package template

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/ksyq12/projctl/internal/errors"
)

// Template names, relative to the embedded tree without the .tmpl suffix.
const (
	DeployScript  = "scripts/deploy.sh"
	ManageScript  = "scripts/manage-project.sh"
	ProjectReadme = "docs/README.md"
)

// DeployData is rendered into a service deploy script
type DeployData struct {
	Project      string
	Service      string
	Manifest     string
	Network      string
	NginxService string
}

// ProjectData is rendered into the management script and README
type ProjectData struct {
	Project         string
	Domain          string
	DefaultPort     int
	CreatedAt       string
	ProjectDir      string
	NginxConf       string
	NginxServiceDir string
	Network         string
}

var funcMap = template.FuncMap{
	"shquote": ShellQuote,
}

// Render renders the named embedded template with data
func Render(name string, data interface{}) (string, error) {
	content, err := templateFS.ReadFile(name + ".tmpl")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("template not found: %s", name), err)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render template", err)
	}

	return buf.String(), nil
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,-]+$`)

// ShellQuote quotes s for POSIX shells. Plain tokens are returned as is.
func ShellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
