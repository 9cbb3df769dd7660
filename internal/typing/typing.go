// Package typing implements the second semantic-analysis pass: it resolves
// every expression's type, checks statements against their expected
// shapes, infers lambda result types via join/meet, and tracks lambda
// captures. It assumes Naming has already run and populated every scope
// and symbol Typing needs to look things up in.
package typing

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/diagnostic"
	"github.com/corvid-lang/sema/internal/symbol"
)

// Typer walks a named program a second time, this time computing types.
type Typer struct {
	prog  *ast.Program
	diag  *diagnostic.Sink
	stack *symbol.Stack

	loopDepth int
}

// Run checks prog, which must already have been through naming.Run,
// recording diagnostics into diag.
func Run(prog *ast.Program, diag *diagnostic.Sink) {
	t := &Typer{prog: prog, diag: diag, stack: symbol.NewStack(prog.GlobalScope)}
	for _, def := range prog.Classes {
		if def.Symbol == nil {
			continue // a duplicate declaration Naming never resolved
		}
		t.checkClass(def)
	}
}

func (t *Typer) checkClass(def *ast.ClassDef) {
	t.stack.Open(def.Scope)
	defer t.stack.Close()

	for _, field := range def.Fields {
		_ = field // fields carry no executable code; their type was fixed by Naming
	}
	for _, method := range def.Methods {
		if !method.IsAbstract && method.Body != nil {
			t.checkMethod(method)
		}
	}
}

func (t *Typer) checkMethod(method *ast.MethodDef) {
	t.stack.Open(method.Formal)
	t.checkBlock(method.Body)
	t.stack.Close()

	if !method.ReturnType.IsVoid() && !method.Body.GetReturns() {
		t.diag.MissingReturn(method.Body.Pos())
	}
}

// checkBlock opens b's scope (already created by Naming), type-checks every
// statement, and sets b.Returns to whether any statement in it definitely
// returns.
func (t *Typer) checkBlock(b *ast.Block) {
	t.stack.Open(b.Scope)
	returns := false
	for _, stmt := range b.Stmts {
		t.checkStmt(stmt)
		if stmt.GetReturns() {
			returns = true
		}
	}
	b.SetReturns(returns)
	t.stack.Close()
}
