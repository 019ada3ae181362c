package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/hupe1980/docsift/internal/tree"
)

// Printer writes comparison results, optionally with ANSI colors.
type Printer struct {
	w      io.Writer
	add    *color.Color
	remove *color.Color
	header *color.Color
	hunk   *color.Color
}

// NewPrinter creates a Printer writing to w. Colors are used only when
// colored is true.
func NewPrinter(w io.Writer, colored bool) *Printer {
	p := &Printer{
		w:      w,
		add:    color.New(color.FgGreen),
		remove: color.New(color.FgRed),
		header: color.New(color.Bold),
		hunk:   color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{p.add, p.remove, p.header, p.hunk} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// ShouldColor reports whether output to w should be colored: noColor is
// unset, NO_COLOR is absent and w is a terminal.
func ShouldColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Summary writes one line per change followed by a totals line.
func (p *Printer) Summary(r *Result) {
	if r.Equal() {
		_, _ = fmt.Fprintln(p.w, "No differences found.")
		return
	}

	for _, c := range r.Changes {
		switch c.Kind {
		case Added:
			p.line(p.add, "+ %s: %s", c.PathString(), inline(c.New))
		case Removed:
			p.line(p.remove, "- %s: %s", c.PathString(), inline(c.Old))
		default:
			if c.Detail != "" {
				p.line(p.hunk, "~ %s: %s", c.PathString(), c.Detail)
			} else {
				p.line(p.hunk, "~ %s: %s -> %s", c.PathString(), inline(c.Old), inline(c.New))
			}
		}
	}

	_, _ = fmt.Fprintf(p.w, "%d added, %d removed, %d modified\n",
		r.Count(Added), r.Count(Removed), r.Count(Modified))
}

// Unified writes a unified diff.
func (p *Printer) Unified(d *DiffResult) {
	if !d.HasDifferences {
		_, _ = fmt.Fprintln(p.w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(d.Unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			p.line(p.header, "%s", line)
		case strings.HasPrefix(line, "@@"):
			p.line(p.hunk, "%s", line)
		case strings.HasPrefix(line, "-"):
			p.line(p.remove, "%s", line)
		case strings.HasPrefix(line, "+"):
			p.line(p.add, "%s", line)
		default:
			_, _ = fmt.Fprintln(p.w, line)
		}
	}
}

func (p *Printer) line(c *color.Color, format string, args ...any) {
	_, _ = c.Fprintf(p.w, format, args...)
	_, _ = fmt.Fprintln(p.w)
}

func inline(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		b, err := json.Marshal(tree.JSONValue(val))
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(b)
	}
}
