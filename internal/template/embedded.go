package template

import (
	"embed"
)

//go:embed scripts/*.tmpl docs/*.tmpl
var templateFS embed.FS
