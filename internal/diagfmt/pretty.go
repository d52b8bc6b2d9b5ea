package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ferrum/internal/diag"
	"ferrum/internal/source"
)

type palette struct {
	loc, err, warn, info, code, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		loc:  color.New(color.Bold),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.FgMagenta),
		note: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.loc, p.err, p.warn, p.info, p.code, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty prints diagnostics in bag order (call bag.Sort() first), one per
// line:
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <Message>
//
// followed by indented notes when opts.ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(fs, d.Primary, opts.PathMode, opts.BaseDir)
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.loc.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint("["+d.Code.ID()+"]"),
			d.Message,
		); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			prefix := ""
			if !n.Span.IsZero() {
				prefix = location(fs, n.Span, opts.PathMode, opts.BaseDir) + ": "
			}
			if _, err := fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("note:"), prefix, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}
