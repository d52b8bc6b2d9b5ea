package project

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"ferrum/internal/diag"
	"ferrum/internal/source"
)

// Config mirrors ferrum.toml.
type Config struct {
	Package PackageConfig  `toml:"package"`
	Structs []StructConfig `toml:"struct"`
	Enums   []EnumConfig   `toml:"enum"`
	Globals []GlobalConfig `toml:"global"`
	Funcs   []FuncConfig   `toml:"fn"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type StructConfig struct {
	Name      string        `toml:"name"`
	Namespace string        `toml:"namespace"`
	Generics  []string      `toml:"generics"`
	Fields    []FieldConfig `toml:"fields"`
	Line      uint32        `toml:"line"`
}

type FieldConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type EnumConfig struct {
	Name      string          `toml:"name"`
	Namespace string          `toml:"namespace"`
	Generics  []string        `toml:"generics"`
	Variants  []VariantConfig `toml:"variants"`
	Line      uint32          `toml:"line"`
}

type VariantConfig struct {
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
}

type GlobalConfig struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	Mutable bool   `toml:"mut"`
	Line    uint32 `toml:"line"`
}

// FuncConfig is one [[fn]]. A method sets owner; instances lists the
// generic arguments (owner's first) each generic body is checked with.
type FuncConfig struct {
	Name      string        `toml:"name"`
	Namespace string        `toml:"namespace"`
	Owner     string        `toml:"owner"`
	Generics  []string      `toml:"generics"`
	Params    []ParamConfig `toml:"params"`
	Returns   string        `toml:"returns"`
	Instances [][]string    `toml:"instances"`
	Line      uint32        `toml:"line"`
	Stmts     []StmtConfig  `toml:"stmt"`
}

type ParamConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Mut  bool   `toml:"mut"`
}

// StmtConfig is one statement. Op selects which of the other keys apply:
// let uses name, mut, type and value; assign uses name and value; swap uses
// name and with; block uses body.
type StmtConfig struct {
	Op    string       `toml:"op"`
	Name  string       `toml:"name"`
	With  string       `toml:"with"`
	Mut   bool         `toml:"mut"`
	Type  string       `toml:"type"`
	Value string       `toml:"value"`
	Body  []StmtConfig `toml:"body"`
	Line  uint32       `toml:"line"`
	Col   uint32       `toml:"col"`
}

// Manifest is a decoded and validated ferrum.toml.
type Manifest struct {
	Path   string
	File   source.FileID
	Config Config
}

// ManifestError carries the diagnostic code a manifest problem reports as.
type ManifestError struct {
	Code diag.Code
	Path string
	Line uint32
	Msg  string
	Err  error
}

func (e *ManifestError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

func (e *ManifestError) Unwrap() error { return e.Err }

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

var stmtOps = map[string]bool{"let": true, "assign": true, "swap": true, "block": true}

// Load decodes path and validates its structure. Files receives the
// manifest's path so spans can be rendered later; it may be nil.
func Load(path string, files *source.FileSet) (*Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ManifestError{Code: diag.ProjManifestNotFound, Path: path, Msg: "cannot open manifest", Err: err}
	}
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		me := &ManifestError{Code: diag.ProjManifestSyntax, Path: path, Msg: "failed to parse TOML", Err: err}
		var pe toml.ParseError
		if errors.As(err, &pe) {
			if n, cerr := safecast.Conv[uint32](pe.Position.Line); cerr == nil {
				me.Line = n
			}
		}
		return nil, me
	}
	if !meta.IsDefined("package") {
		return nil, &ManifestError{Code: diag.ProjManifestInvalid, Path: path, Msg: "invalid manifest", Err: ErrPackageSectionMissing}
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, &ManifestError{Code: diag.ProjManifestInvalid, Path: path, Msg: "invalid manifest", Err: ErrPackageNameMissing}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, &ManifestError{Code: diag.ProjManifestInvalid, Path: path, Msg: fmt.Sprintf("unknown key %s", undecoded[0])}
	}
	if err := validate(path, &cfg); err != nil {
		return nil, err
	}
	m := &Manifest{Path: path, Config: cfg}
	if files != nil {
		m.File = files.Add(path)
	}
	return m, nil
}

func validate(path string, cfg *Config) error {
	invalid := func(line uint32, format string, args ...any) error {
		return &ManifestError{Code: diag.ProjManifestInvalid, Path: path, Line: line, Msg: fmt.Sprintf(format, args...)}
	}
	for _, s := range cfg.Structs {
		if s.Name == "" {
			return invalid(s.Line, "[[struct]] without name")
		}
	}
	for _, e := range cfg.Enums {
		if e.Name == "" {
			return invalid(e.Line, "[[enum]] without name")
		}
	}
	for _, g := range cfg.Globals {
		if g.Name == "" || g.Type == "" {
			return invalid(g.Line, "[[global]] needs name and type")
		}
	}
	var checkStmts func(fn string, stmts []StmtConfig) error
	checkStmts = func(fn string, stmts []StmtConfig) error {
		for _, st := range stmts {
			if !stmtOps[st.Op] {
				return invalid(st.Line, "fn %s: unknown op %q", fn, st.Op)
			}
			switch st.Op {
			case "let", "assign":
				if st.Name == "" {
					return invalid(st.Line, "fn %s: %s needs a name", fn, st.Op)
				}
				if st.Op == "assign" && st.Value == "" {
					return invalid(st.Line, "fn %s: assign needs a value", fn)
				}
			case "swap":
				if st.Name == "" || st.With == "" {
					return invalid(st.Line, "fn %s: swap needs name and with", fn)
				}
			case "block":
				if err := checkStmts(fn, st.Body); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, fn := range cfg.Funcs {
		if fn.Name == "" {
			return invalid(fn.Line, "[[fn]] without name")
		}
		for _, p := range fn.Params {
			if p.Name == "" || p.Type == "" {
				return invalid(fn.Line, "fn %s: params need name and type", fn.Name)
			}
		}
		if err := checkStmts(fn.Name, fn.Stmts); err != nil {
			return err
		}
	}
	return nil
}

// Diagnostic renders e against the manifest file registered as file.
func (e *ManifestError) Diagnostic(file source.FileID) diag.Diagnostic {
	return diag.NewError(e.Code, source.Span{File: file, Line: e.Line}, e.Error())
}
