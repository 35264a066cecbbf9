// Package nginx renders nginx configuration from a directive tree.
//
// Configuration is assembled from Directive values instead of text
// fragments, so user-supplied values only ever appear as arguments and are
// quoted when they contain characters nginx treats as syntax.
//
//	conf := nginx.Config{
//	    nginx.Upstream("myapp_api", nginx.D("server", "api:3001")),
//	    nginx.Server(nginx.D("listen", "80"), nginx.D("server_name", "myapp.example.com")),
//	}
//	text := conf.String()
package nginx

import (
	"strings"
)

const indentUnit = "    "

// Directive is a single nginx directive, optionally with a block.
type Directive struct {
	Name    string
	Args    []string
	Block   []*Directive
	Comment string
	// HasBlock renders "{ }" even when Block is empty.
	HasBlock bool
}

// Config is an ordered list of top-level directives.
type Config []*Directive

// D creates a simple directive: name arg1 arg2;
func D(name string, args ...string) *Directive {
	return &Directive{Name: name, Args: args}
}

// B creates a block directive: name args { children }
func B(name string, args []string, children ...*Directive) *Directive {
	return &Directive{Name: name, Args: args, Block: children, HasBlock: true}
}

// Comment creates a comment line.
func Comment(text string) *Directive {
	return &Directive{Comment: text}
}

// Blank creates an empty separator line.
func Blank() *Directive {
	return &Directive{}
}

// Server creates a server block.
func Server(children ...*Directive) *Directive {
	return B("server", nil, children...)
}

// Upstream creates a named upstream block.
func Upstream(name string, children ...*Directive) *Directive {
	return B("upstream", []string{name}, children...)
}

// Location creates a location block. match is the full location argument
// list, e.g. Location([]string{"=", "/health"}, ...).
func Location(match []string, children ...*Directive) *Directive {
	return B("location", match, children...)
}

// Append adds children to a block directive and returns it.
func (d *Directive) Append(children ...*Directive) *Directive {
	d.Block = append(d.Block, children...)
	d.HasBlock = true
	return d
}

// String renders the configuration. A blank line follows every top-level
// block that is not the last directive.
func (c Config) String() string {
	var sb strings.Builder
	for i, d := range c {
		if i > 0 && c[i-1].HasBlock {
			sb.WriteString("\n")
		}
		d.render(&sb, 0)
	}
	return sb.String()
}

// String renders a single directive.
func (d *Directive) String() string {
	var sb strings.Builder
	d.render(&sb, 0)
	return sb.String()
}

func (d *Directive) render(sb *strings.Builder, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	if d.Name == "" {
		if d.Comment != "" {
			for _, line := range strings.Split(d.Comment, "\n") {
				sb.WriteString(indent)
				sb.WriteString(strings.TrimRight("# "+line, " "))
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString("\n")
		}
		return
	}

	sb.WriteString(indent)
	sb.WriteString(d.Name)
	for _, a := range d.Args {
		sb.WriteString(" ")
		sb.WriteString(Quote(a))
	}

	if !d.HasBlock {
		sb.WriteString(";")
		if d.Comment != "" {
			sb.WriteString("  # ")
			sb.WriteString(d.Comment)
		}
		sb.WriteString("\n")
		return
	}

	sb.WriteString(" {\n")
	for _, child := range d.Block {
		child.render(sb, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("}\n")
}

// Quote returns arg unchanged when it is a plain nginx token, and a double
// quoted string otherwise.
func Quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\r\n;{}\"'#\\") {
		return arg
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n', '\r':
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
