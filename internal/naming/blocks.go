package naming

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/symbol"
	"github.com/corvid-lang/sema/internal/types"
)

// visitBlock opens a fresh local scope nested in whatever is on top of the
// stack and declares/visits every statement in order.
func (n *Namer) visitBlock(b *ast.Block) {
	b.Scope = symbol.NewScope(symbol.ScopeLocal, n.stack.CurrentScope())
	n.stack.Open(b.Scope)
	for _, stmt := range b.Stmts {
		n.visitStmt(stmt)
	}
	n.stack.Close()
}

func (n *Namer) visitStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LocalVarDef:
		n.visitLocalVarDef(st)
	case *ast.AssignStmt:
		n.visitExpr(st.LHS)
		n.visitExpr(st.RHS)
	case *ast.ExprStmt:
		n.visitExpr(st.Expr)
	case *ast.IfStmt:
		n.visitExpr(st.Cond)
		n.visitStmt(st.Then)
		if st.Else != nil {
			n.visitStmt(st.Else)
		}
	case *ast.WhileStmt:
		n.visitExpr(st.Cond)
		n.visitStmt(st.Body)
	case *ast.ForStmt:
		n.visitFor(st)
	case *ast.BreakStmt:
		// nothing to declare
	case *ast.ReturnStmt:
		if st.Expr != nil {
			n.visitExpr(st.Expr)
		}
	case *ast.PrintStmt:
		for _, a := range st.Args {
			n.visitExpr(a)
		}
	case *ast.Block:
		n.visitBlock(st)
	}
}

func (n *Namer) visitFor(loop *ast.ForStmt) {
	loop.Scope = symbol.NewScope(symbol.ScopeLocal, n.stack.CurrentScope())
	n.stack.Open(loop.Scope)
	if loop.Init != nil {
		n.visitStmt(loop.Init)
	}
	if loop.Cond != nil {
		n.visitExpr(loop.Cond)
	}
	if loop.Update != nil {
		n.visitStmt(loop.Update)
	}
	n.visitStmt(loop.Body)
	n.stack.Close()
}

// visitLocalVarDef declares def's symbol. Explicitly typed locals get their
// real type now; `var` locals get a Null placeholder that Typing refines via
// VarSymbol.SetType once the initializer has been checked. Either way the
// symbol exists before the initializer expression is visited, matching
// lookupBefore's position-based self-reference rule: the symbol's own
// declaration position makes it invisible to a lookup from within its own
// initializer.
func (n *Namer) visitLocalVarDef(def *ast.LocalVarDef) {
	var typ *types.Type
	if def.IsVar {
		typ = types.Null
	} else {
		typ = n.resolveType(def.Type)
		if typ.IsVoid() {
			n.diag.BadVarType(def.Pos(), def.Name)
		}
	}

	if prior, ok := n.stack.FindConflict(def.Name); ok {
		n.diag.DeclConflict(def.Pos(), def.Name, prior.Pos())
	} else {
		sym := symbol.NewVar(def.Name, typ, def.Pos(), n.stack.CurrentScope())
		sym.IsLocal = true
		n.stack.Declare(sym)
		def.Symbol = sym
	}

	if def.Init != nil {
		n.visitExpr(def.Init)
	}
}

// visitExpr recurses through an expression tree purely to find and declare
// nested lambdas; Naming does not infer or check types.
func (n *Namer) visitExpr(e ast.Expression) {
	switch ex := e.(type) {
	case nil, *ast.IntLit, *ast.BoolLit, *ast.StringLit, *ast.NullLit,
		*ast.ReadIntExpr, *ast.ReadLineExpr, *ast.ThisExpr:
		return
	case *ast.UnaryExpr:
		n.visitExpr(ex.Operand)
	case *ast.BinaryExpr:
		n.visitExpr(ex.LHS)
		n.visitExpr(ex.RHS)
	case *ast.VarSel:
		if ex.Receiver != nil {
			n.visitExpr(ex.Receiver)
		}
	case *ast.NewClassExpr:
		// nothing nested
	case *ast.NewArrayExpr:
		n.visitExpr(ex.Length)
	case *ast.IndexSelExpr:
		n.visitExpr(ex.Array)
		n.visitExpr(ex.Index)
	case *ast.CallExpr:
		if ex.Receiver != nil {
			n.visitExpr(ex.Receiver)
		}
		for _, a := range ex.Args {
			n.visitExpr(a)
		}
	case *ast.ClassTestExpr:
		n.visitExpr(ex.Operand)
	case *ast.ClassCastExpr:
		n.visitExpr(ex.Operand)
	case *ast.LambdaExpr:
		n.visitLambda(ex)
	}
}

// visitLambda is the Naming-time half of lambda handling: create the
// lambda's scope and symbol, declare its parameters (void is illegal), and
// recurse into its body. A block-bodied lambda opens its block as a local
// scope nested in the lambda scope; an expression-bodied lambda still gets
// an anonymous local scope wrapped around it so capture analysis sees the
// same shape either way.
func (n *Namer) visitLambda(l *ast.LambdaExpr) {
	lambdaScope := symbol.NewScope(symbol.ScopeLambda, n.stack.CurrentScope())
	n.stack.Open(lambdaScope)

	var params []*types.Type
	for _, p := range l.Params {
		ptype := types.Null // an untyped lambda param keeps the null placeholder; a typed one is resolved below
		if p.Type != nil {
			ptype = n.resolveType(p.Type)
		}
		if ptype.IsVoid() {
			n.diag.VoidAsPara(p.Pos())
		}
		psym := symbol.NewVar(p.Name, ptype, p.Pos(), lambdaScope)
		psym.IsParameter = true
		n.stack.Declare(psym)
		p.Symbol = psym
		params = append(params, ptype)
	}

	lsym := symbol.NewLambda(l.Pos(), params, lambdaScope)
	lambdaScope.Owner = lsym
	n.stack.Declare(lsym)
	l.Symbol = lsym
	l.Scope = lambdaScope

	if l.Body != nil {
		n.visitBlock(l.Body)
	} else if l.ExprBody != nil {
		ret := &ast.ReturnStmt{Expr: l.ExprBody}
		ret.SetPos(l.ExprBody.Pos())
		wrapped := &ast.Block{Stmts: []ast.Statement{ret}}
		wrapped.SetPos(l.ExprBody.Pos())
		n.visitBlock(wrapped)
		l.Body = wrapped
		l.ExprBody = nil
	}

	n.stack.Close()
}
