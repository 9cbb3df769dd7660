// Package driver runs the naming and typing passes over a program and
// loads the YAML fixture AST used in place of a real parser. It mirrors the
// shape of the teacher's internal/compiler pipeline functions, but its
// pipeline has exactly two stages instead of parse/check/lower/codegen.
package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/diagnostic"
	"github.com/corvid-lang/sema/internal/naming"
	"github.com/corvid-lang/sema/internal/symbol"
	"github.com/corvid-lang/sema/internal/typing"
)

// Target selects how far the pipeline runs, mirroring the closed enum from
// the checked language's own external interface.
type Target int

const (
	TargetNameResolution Target = iota
	TargetTypeCheck
)

func (t Target) String() string {
	switch t {
	case TargetNameResolution:
		return "names"
	case TargetTypeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Set implements flag.Value / cli.Generic so Target can be read directly off
// a CLI argument.
func (t *Target) Set(s string) error {
	switch s {
	case "names":
		*t = TargetNameResolution
	case "check":
		*t = TargetTypeCheck
	default:
		return fmt.Errorf("unknown target %q (want names or check)", s)
	}
	return nil
}

// Options configures a single driver.Run invocation. It is the one piece of
// ambient configuration this repository has, so it is kept small and is
// loadable straight off a YAML document.
type Options struct {
	Target Target `yaml:"target"`
	// MaxDiagnostics caps the number of diagnostics kept after each stage
	// that reports errors; 0 means no cap.
	MaxDiagnostics int `yaml:"max_diagnostics"`
}

// DefaultOptions runs the full pipeline with no cap on reported diagnostics.
func DefaultOptions() Options {
	return Options{Target: TargetTypeCheck}
}

// Result is everything a caller might want out of a driver.Run: the
// diagnostics collected, the resulting global scope (nil if Naming never
// ran to completion), and the program itself, now annotated in place.
type Result struct {
	Program *ast.Program
	Global  *symbol.Scope
	Diag    *diagnostic.Sink
}

// HasErrors reports whether the run produced any error-severity diagnostic.
func (r *Result) HasErrors() bool { return r.Diag.HasErrors() }

// Run executes Naming, and then, if Naming reported no errors and opts.Target
// asks for it, Typing. Typing never runs over a program Naming flagged: a
// class graph with missing parents or cycles leaves scopes in a state Typing
// cannot safely walk.
func Run(prog *ast.Program, opts Options) *Result {
	diag := diagnostic.New()
	global := naming.Run(prog, diag)

	res := &Result{Program: prog, Global: global, Diag: diag}
	if diag.HasErrors() {
		diag.Truncate(opts.MaxDiagnostics)
		return res
	}
	if opts.Target >= TargetTypeCheck {
		typing.Run(prog, diag)
		diag.Truncate(opts.MaxDiagnostics)
	}
	return res
}

// LoadOptions decodes a YAML options document from path.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("decoding options: %w", err)
	}
	return opts, nil
}

// LoadFixture decodes a YAML-encoded fixture AST from path. The fixture
// format is a direct structural encoding of internal/ast's node types (see
// fixture.go), a stand-in for "a parser already ran and produced this" —
// this repository carries no parser of its own.
func LoadFixture(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc fixtureProgram
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	return doc.toAST(), nil
}
