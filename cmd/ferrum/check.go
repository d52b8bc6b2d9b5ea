package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ferrum/internal/bytecode"
	"ferrum/internal/diag"
	"ferrum/internal/diagfmt"
	"ferrum/internal/driver"
	"ferrum/internal/mono"
	"ferrum/internal/project"
	"ferrum/internal/source"
	"ferrum/internal/testkit"
	"ferrum/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [ferrum.toml|directory]",
	Short: "Check ownership and borrow rules of every function in a manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("emit", "", "write the maintenance op chunk to this .fbc file")
	checkCmd.Flags().Bool("disasm", false, "print the emitted maintenance ops")
	checkCmd.Flags().Bool("instances", false, "list every type and function instance produced")
	checkCmd.Flags().Bool("verify", false, "cross-check borrow states against live references after every statement")
}

// loadManifest locates and decodes the manifest named by args. Manifest
// problems come back as a bag so they print like any other diagnostic.
func loadManifest(args []string, files *source.FileSet) (*project.Manifest, *diag.Bag, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	path, ok, err := project.FindManifest(start)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no %s found from %s", project.ManifestName, start)
	}
	m, err := project.Load(path, files)
	if err != nil {
		var me *project.ManifestError
		if errors.As(err, &me) {
			bag := diag.NewBag(1)
			bag.Add(me.Diagnostic(files.Add(path)))
			return nil, bag, nil
		}
		return nil, nil, err
	}
	return m, nil, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	emitPath, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	disasm, err := cmd.Flags().GetBool("disasm")
	if err != nil {
		return fmt.Errorf("failed to get disasm flag: %w", err)
	}
	listInstances, err := cmd.Flags().GetBool("instances")
	if err != nil {
		return fmt.Errorf("failed to get instances flag: %w", err)
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return fmt.Errorf("failed to get verify flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	files := source.NewFileSet()
	out := &diagOutput{cmd: cmd, files: files, format: format, withNotes: withNotes, fullPath: fullPath}

	m, bag, err := loadManifest(args, files)
	if err != nil {
		return err
	}
	if bag != nil {
		return out.fail(bag)
	}
	prog, err := m.Program()
	if err != nil {
		var me *project.ManifestError
		if errors.As(err, &me) {
			bag := diag.NewBag(1)
			bag.Add(me.Diagnostic(m.File))
			return out.fail(bag)
		}
		return err
	}

	opts := driver.CheckOptions{
		MaxDiagnostics: maxDiagnostics,
		EnableTimings:  showTimings,
	}
	if verify {
		opts.Verify = testkit.CheckBorrowInvariants
	}
	res, err := driver.Check(cmd.Context(), prog, opts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	res.Bag.Dedup()
	res.Bag.Sort()
	if err := out.print(res.Bag); err != nil {
		return err
	}
	if showTimings && format == "pretty" {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}

	if listInstances {
		if err := printInstances(cmd.OutOrStdout(), res.Cache().Entries()); err != nil {
			return err
		}
	}
	chunk := res.Compiler.Chunk()
	if disasm {
		if err := chunk.Disassemble(cmd.OutOrStdout(), 0, 0); err != nil {
			return fmt.Errorf("disassemble: %w", err)
		}
	}
	if res.Bag.HasErrors() {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d of %d functions failed\n", m.Config.Package.Name, res.Failed, res.Checked)
		}
		return errCheckFailed
	}
	if emitPath != "" {
		if err := bytecode.WriteFile(emitPath, chunk); err != nil {
			return fmt.Errorf("emit %s: %w", emitPath, err)
		}
	}
	if !quiet {
		digest, err := project.HashFile(m.Path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d functions ok, %d ops (manifest %s)\n",
			m.Config.Package.Name, res.Checked, chunk.Len(), digest.Short())
	}
	return nil
}

// printInstances lists cache records in production order, one per line.
func printInstances(w io.Writer, recs []mono.Record) error {
	for _, rec := range recs {
		name := rec.Template
		if len(rec.Args) > 0 {
			name += types.ArgsString(rec.Args)
		}
		if _, err := fmt.Fprintf(w, "%016x  %s => %s\n", rec.Fingerprint, name, rec.Result); err != nil {
			return err
		}
	}
	return nil
}

type diagOutput struct {
	cmd       *cobra.Command
	files     *source.FileSet
	format    string
	withNotes bool
	fullPath  bool
}

func (o *diagOutput) print(bag *diag.Bag) error {
	pathMode := diagfmt.PathModeRelative
	if o.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	base, err := os.Getwd()
	if err != nil {
		base = ""
	}

	switch o.format {
	case "json":
		return diagfmt.JSON(o.cmd.OutOrStdout(), bag, o.files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          base,
			IncludeNotes:     o.withNotes,
		})
	default:
		colored, err := useColor(o.cmd, os.Stdout)
		if err != nil {
			return err
		}
		return diagfmt.Pretty(o.cmd.OutOrStdout(), bag, o.files, diagfmt.PrettyOpts{
			Color:     colored,
			PathMode:  pathMode,
			BaseDir:   base,
			ShowNotes: o.withNotes,
		})
	}
}

func (o *diagOutput) fail(bag *diag.Bag) error {
	if err := o.print(bag); err != nil {
		return err
	}
	return errCheckFailed
}
