package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ferrum/internal/compiler"
	"ferrum/internal/diag"
	"ferrum/internal/mono"
	"ferrum/internal/project"
	"ferrum/internal/source"
	"ferrum/internal/types"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <ferrum.toml|directory> <type>...",
	Short: "Print size and member offsets of types declared in a manifest",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	files := source.NewFileSet()
	out := &diagOutput{cmd: cmd, files: files, format: "pretty"}
	m, bag, err := loadManifest(args[:1], files)
	if err != nil {
		return err
	}
	if bag != nil {
		return out.fail(bag)
	}
	prog, err := m.Program()
	if err != nil {
		return err
	}
	reg := compiler.NewRegistry(prog.AST, mono.NewCache())
	if err := reg.Register(prog.Structs, prog.Enums); err != nil {
		bag := diag.NewBag(1)
		bag.Add(compiler.ToDiagnostic(err, source.Span{File: m.File}))
		return out.fail(bag)
	}

	failed := false
	for _, expr := range args[1:] {
		id, err := project.ParseType(prog.AST, expr, source.Span{})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", expr, err)
			failed = true
			continue
		}
		ty, err := reg.Resolve(id)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", expr, err)
			failed = true
			continue
		}
		if err := printLayout(cmd.OutOrStdout(), ty); err != nil {
			return err
		}
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

type layoutRow struct {
	member, typ, offset, size string
}

func layoutRows(ty types.Type) []layoutRow {
	var rows []layoutRow
	switch ty.Kind() {
	case types.KindStruct:
		for _, f := range ty.Struct().Fields() {
			rows = append(rows, layoutRow{f.Name, f.Type.String(), strconv.Itoa(f.Offset), strconv.Itoa(f.Type.Size())})
		}
	case types.KindTuple:
		for i, mem := range ty.Tuple().Members() {
			rows = append(rows, layoutRow{strconv.Itoa(i), mem.Type.String(), strconv.Itoa(mem.Offset), strconv.Itoa(mem.Type.Size())})
		}
	case types.KindEnum:
		for _, v := range ty.Enum().Variants() {
			if len(v.Params) == 0 {
				rows = append(rows, layoutRow{fmt.Sprintf("%s#%d", v.Name, v.ID), "", "", "0"})
			}
			for i, p := range v.Params {
				rows = append(rows, layoutRow{fmt.Sprintf("%s#%d.%d", v.Name, v.ID, i), p.Type.String(), strconv.Itoa(p.Offset), strconv.Itoa(p.Type.Size())})
			}
		}
	}
	return rows
}

// printLayout writes a header line and an aligned member table. Widths are
// measured in terminal cells so non-ASCII member names line up.
func printLayout(w io.Writer, ty types.Type) error {
	if _, err := fmt.Fprintf(w, "%s  size %d\n", ty, ty.Size()); err != nil {
		return err
	}
	rows := layoutRows(ty)
	if len(rows) == 0 {
		return nil
	}
	header := layoutRow{"member", "type", "offset", "size"}
	widths := [4]int{}
	for _, r := range append([]layoutRow{header}, rows...) {
		for i, cell := range [4]string{r.member, r.typ, r.offset, r.size} {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, r := range append([]layoutRow{header}, rows...) {
		line := "  " + runewidth.FillRight(r.member, widths[0]) +
			"  " + runewidth.FillRight(r.typ, widths[1]) +
			"  " + runewidth.FillLeft(r.offset, widths[2]) +
			"  " + runewidth.FillLeft(r.size, widths[3])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
