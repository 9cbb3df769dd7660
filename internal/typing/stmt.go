package typing

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/symbol"
	"github.com/corvid-lang/sema/internal/types"
)

func (t *Typer) checkStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LocalVarDef:
		t.checkLocalVarDef(st)
	case *ast.AssignStmt:
		t.checkAssign(st)
	case *ast.ExprStmt:
		t.checkExpr(st.Expr)
	case *ast.IfStmt:
		t.checkIf(st)
	case *ast.WhileStmt:
		t.checkWhile(st)
	case *ast.ForStmt:
		t.checkFor(st)
	case *ast.BreakStmt:
		t.checkBreak(st)
	case *ast.ReturnStmt:
		t.checkReturn(st)
	case *ast.PrintStmt:
		t.checkPrint(st)
	case *ast.Block:
		t.checkBlock(st)
	}
}

// checkLocalVarDef implements spec.md's localVarDef rule: explicitly typed
// declarations require rhs <: declared type; `var` declarations forbid a
// void initializer and adopt the initializer's type. Either way, the
// self-reference window is marked on the stack's defining map before the
// initializer is visited, so `var x = x` resolves x's own use as
// undeclared rather than finding the not-yet-initialized local.
func (t *Typer) checkLocalVarDef(def *ast.LocalVarDef) {
	if def.Init == nil {
		return
	}
	t.stack.AddDefining(def.Name, def.Pos())
	t.checkExpr(def.Init)
	t.stack.RemoveDefining(def.Name)

	initType := def.Init.GetType()
	if def.IsVar {
		if initType.IsVoid() {
			t.diag.AssignVarVoid(def.Pos(), def.Name)
		}
		if def.Symbol != nil {
			def.Symbol.SetType(initType)
		}
		return
	}
	declared := def.Symbol.Type()
	if initType.NoError() && !initType.SubtypeOf(declared) {
		t.diag.IncompatBinOp(def.Pos(), declared.String(), "=", initType.String())
	}
}

func (t *Typer) checkAssign(st *ast.AssignStmt) {
	t.checkExpr(st.LHS)
	t.checkExpr(st.RHS)

	if varsel, ok := st.LHS.(*ast.VarSel); ok {
		if varsel.IsMethod {
			t.diag.AssignMethod(st.Pos(), varsel.Name)
			return
		}
		if varsel.Receiver == nil && t.stack.InLambda() && t.isOutsideCurrentLambda(varsel.Symbol) {
			t.diag.AssignCapture(st.Pos())
			return
		}
	}

	lt, rt := st.LHS.GetType(), st.RHS.GetType()
	if lt.NoError() && !rt.SubtypeOf(lt) {
		t.diag.IncompatBinOp(st.Pos(), lt.String(), "=", rt.String())
	}
}

func (t *Typer) checkIf(st *ast.IfStmt) {
	t.checkTestExpr(st.Cond)
	t.checkStmt(st.Then)
	if st.Else != nil {
		t.checkStmt(st.Else)
	}
	st.SetReturns(st.Then.GetReturns() && st.Else != nil && st.Else.GetReturns())
}

func (t *Typer) checkWhile(st *ast.WhileStmt) {
	t.checkTestExpr(st.Cond)
	t.loopDepth++
	t.checkStmt(st.Body)
	t.loopDepth--
}

func (t *Typer) checkFor(st *ast.ForStmt) {
	t.stack.Open(st.Scope)
	if st.Init != nil {
		t.checkStmt(st.Init)
	}
	if st.Cond != nil {
		t.checkTestExpr(st.Cond)
	}
	t.loopDepth++
	if st.Update != nil {
		t.checkStmt(st.Update)
	}
	t.checkStmt(st.Body)
	t.loopDepth--
	t.stack.Close()
}

func (t *Typer) checkBreak(st *ast.BreakStmt) {
	if t.loopDepth == 0 {
		t.diag.BreakOutOfLoop(st.Pos())
	}
}

func (t *Typer) checkReturn(st *ast.ReturnStmt) {
	if t.stack.InLambda() {
		var actual *types.Type
		if st.Expr != nil {
			t.checkExpr(st.Expr)
			actual = st.Expr.GetType()
			st.SetReturns(true)
		} else {
			actual = types.Void
			st.SetReturns(false)
		}
		lam := t.stack.CurrentLambda()
		lam.ReturnTypes = append(lam.ReturnTypes, actual)
		return
	}

	method := t.stack.CurrentMethod()
	expected := types.Void
	if method != nil {
		expected = method.Type().Ret()
	}
	var actual *types.Type
	if st.Expr != nil {
		t.checkExpr(st.Expr)
		actual = st.Expr.GetType()
	} else {
		actual = types.Void
	}
	if actual.NoError() && !actual.SubtypeOf(expected) {
		t.diag.BadReturnType(st.Pos(), expected.String(), actual.String())
	}
	st.SetReturns(st.Expr != nil)
}

func (t *Typer) checkPrint(st *ast.PrintStmt) {
	for i, arg := range st.Args {
		t.checkExpr(arg)
		typ := arg.GetType()
		if typ.NoError() && !typ.IsBase() {
			t.diag.BadPrintArg(arg.Pos(), i+1, typ.String())
		}
	}
}

func (t *Typer) checkTestExpr(e ast.Expression) {
	t.checkExpr(e)
	typ := e.GetType()
	if typ.NoError() && !typ.Eq(types.Bool) {
		t.diag.BadTestExpr(e.Pos())
	}
}

// isOutsideCurrentLambda reports whether sym, as resolved by a VarSel, was
// defined outside the current lambda's own scope chain and is not a class
// member (members are reached through `this`, which is captured as a
// whole). Used both to decide whether a reference should be captured and
// whether an assignment to it is illegal.
func (t *Typer) isOutsideCurrentLambda(sym symbol.Symbol) bool {
	lam := t.stack.CurrentLambda()
	if lam == nil {
		return false
	}
	v, ok := sym.(*symbol.VarSymbol)
	if !ok || v.IsMember {
		return false
	}
	for s := v.Scope(); s != nil; s = s.Parent {
		if s == lam.Scope {
			return false
		}
		if !s.IsFormalOrLocalOrLambda() {
			break
		}
	}
	return true
}

// recordCapture records sym into the current lambda's captured set if it
// was defined outside it.
func (t *Typer) recordCapture(sym symbol.Symbol) {
	if t.stack.InLambda() && t.isOutsideCurrentLambda(sym) {
		t.stack.CurrentLambda().Capture(sym)
	}
}

// recordThisCapture records the enclosing method's `this` symbol as
// captured, used whenever `this` itself is referenced, explicitly or via
// an implicit member-variable rewrite.
func (t *Typer) recordThisCapture() {
	if !t.stack.InLambda() {
		return
	}
	this, found := t.stack.Lookup("this")
	if found {
		t.recordCapture(this)
	}
}
