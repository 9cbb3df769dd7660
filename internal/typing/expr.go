package typing

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/source"
	"github.com/corvid-lang/sema/internal/symbol"
	"github.com/corvid-lang/sema/internal/types"
)

// checkExpr computes e's type, records it on e via SetType, and returns it.
// Every branch returns a non-nil type even on error, per spec.md's
// propagation rule: the offending expression gets types.Error and callers
// gate further checks on NoError() rather than nil-checking.
func (t *Typer) checkExpr(e ast.Expression) *types.Type {
	typ := t.computeExpr(e)
	e.SetType(typ)
	return typ
}

func (t *Typer) computeExpr(e ast.Expression) *types.Type {
	switch ex := e.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.BoolLit:
		return types.Bool
	case *ast.StringLit:
		return types.String
	case *ast.NullLit:
		return types.Null
	case *ast.ReadIntExpr:
		return types.Int
	case *ast.ReadLineExpr:
		return types.String
	case *ast.ThisExpr:
		return t.checkThis(ex)
	case *ast.UnaryExpr:
		return t.checkUnary(ex)
	case *ast.BinaryExpr:
		return t.checkBinary(ex)
	case *ast.VarSel:
		return t.checkVarSel(ex)
	case *ast.NewClassExpr:
		return t.checkNewClass(ex)
	case *ast.NewArrayExpr:
		return t.checkNewArray(ex)
	case *ast.IndexSelExpr:
		return t.checkIndexSel(ex)
	case *ast.CallExpr:
		return t.checkCall(ex)
	case *ast.ClassTestExpr:
		return t.checkClassTest(ex)
	case *ast.ClassCastExpr:
		return t.checkClassCast(ex)
	case *ast.LambdaExpr:
		return t.checkLambda(ex)
	default:
		return types.Error
	}
}

func (t *Typer) checkThis(ex *ast.ThisExpr) *types.Type {
	method := t.stack.CurrentMethod()
	if method == nil || method.IsStatic {
		t.diag.ThisInStaticFunc(ex.Pos())
		return types.Error
	}
	t.recordThisCapture()
	return t.stack.CurrentClass().Type()
}

func (t *Typer) checkUnary(ex *ast.UnaryExpr) *types.Type {
	operand := t.checkExpr(ex.Operand)
	var expect, result *types.Type
	if ex.Op == ast.UnaryNeg {
		expect, result = types.Int, types.Int
	} else {
		expect, result = types.Bool, types.Bool
	}
	if operand.NoError() && !operand.Eq(expect) {
		t.diag.IncompatUnOp(ex.Pos(), ex.Op.String(), operand.String())
	}
	return result
}

// checkBinary classifies an operator's nominal result and required operand
// shape. Equality operators accept any two types related by subtyping in
// either direction; every other category requires both operands to match
// a fixed operand type exactly.
func (t *Typer) checkBinary(ex *ast.BinaryExpr) *types.Type {
	lt := t.checkExpr(ex.LHS)
	rt := t.checkExpr(ex.RHS)

	switch ex.Op {
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod:
		t.expectOperands(ex, lt, rt, types.Int)
		return types.Int
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe:
		t.expectOperands(ex, lt, rt, types.Int)
		return types.Bool
	case ast.BinAnd, ast.BinOr:
		t.expectOperands(ex, lt, rt, types.Bool)
		return types.Bool
	case ast.BinEq, ast.BinNe:
		if lt.NoError() && rt.NoError() && !lt.SubtypeOf(rt) && !rt.SubtypeOf(lt) {
			t.diag.IncompatBinOp(ex.Pos(), lt.String(), ex.Op.String(), rt.String())
		}
		return types.Bool
	default:
		return types.Error
	}
}

func (t *Typer) expectOperands(ex *ast.BinaryExpr, lt, rt, want *types.Type) {
	if lt.NoError() && rt.NoError() && (!lt.Eq(want) || !rt.Eq(want)) {
		t.diag.IncompatBinOp(ex.Pos(), lt.String(), ex.Op.String(), rt.String())
	}
}

// checkVarSel implements the receiver-less and receiver-qualified VarSel
// rules from spec.md §4.5.
func (t *Typer) checkVarSel(ex *ast.VarSel) *types.Type {
	if ex.Receiver != nil {
		return t.checkVarSelWithReceiver(ex)
	}

	lookupPos := ex.Pos()
	if defPos, ok := t.stack.DefiningPos(ex.Name); ok {
		// name's own var-def initializer is being elaborated right now;
		// looking up from the def's own LHS position rather than ex.Pos()
		// makes LookupBefore reject the not-yet-initialized local itself
		// and fall through to whatever name resolves to further out (a
		// field, an enclosing local, ...) exactly as the original does.
		lookupPos = defPos
	}

	sym, found := t.stack.LookupBefore(ex.Name, lookupPos)
	if !found {
		t.diag.UndeclVar(ex.Pos(), ex.Name)
		return types.Error
	}

	switch s := sym.(type) {
	case *symbol.ClassSymbol:
		ex.IsClassName = true
		ex.Symbol = s
		return s.Type()
	case *symbol.MethodSymbol:
		ex.IsMethod = true
		ex.Symbol = s
		return s.Type()
	case *symbol.VarSymbol:
		ex.Symbol = s
		if s.IsMember {
			method := t.stack.CurrentMethod()
			if method != nil && method.IsStatic {
				t.diag.RefNonStatic(ex.Pos(), method.Name(), ex.Name)
				return types.Error
			}
			t.recordThisCapture()
			return s.Type()
		}
		t.recordCapture(s)
		return s.Type()
	default:
		return types.Error
	}
}

// checkVarSelWithReceiver resolves `receiver.name`, dispatching on whether
// the receiver is a class name (static access) or an instance (field
// access, subject to protected-style visibility).
func (t *Typer) checkVarSelWithReceiver(ex *ast.VarSel) *types.Type {
	recvType := t.checkExpr(ex.Receiver)
	if !recvType.NoError() {
		return types.Error
	}

	if recv, ok := ex.Receiver.(*ast.VarSel); ok && recv.IsClassName {
		class := recv.Symbol.(*symbol.ClassSymbol)
		sym, found := class.Scope.Lookup(ex.Name)
		if !found {
			t.diag.FieldNotFound(ex.Pos(), ex.Name, class.Name())
			return types.Error
		}
		if _, isVar := sym.(*symbol.VarSymbol); isVar && !isStaticFriendly(sym) {
			t.diag.NotClassField(ex.Pos(), ex.Name, class.Name())
			return types.Error
		}
		ex.Symbol = sym
		if m, isMethod := sym.(*symbol.MethodSymbol); isMethod {
			ex.IsMethod = true
			if !m.IsStatic {
				t.diag.NotClassField(ex.Pos(), ex.Name, class.Name())
				return types.Error
			}
		}
		return sym.Type()
	}

	if !recvType.IsClass() {
		t.diag.NotClass(ex.Pos(), recvType.String())
		return types.Error
	}
	classSym := t.lookupClassSymbol(recvType.ClassName())
	if classSym == nil {
		return types.Error
	}
	sym, found := classSym.Scope.Lookup(ex.Name)
	if !found {
		t.diag.FieldNotFound(ex.Pos(), ex.Name, classSym.Name())
		return types.Error
	}
	ex.Symbol = sym
	if m, isMethod := sym.(*symbol.MethodSymbol); isMethod {
		ex.IsMethod = true
		return m.Type()
	}
	v := sym.(*symbol.VarSymbol)
	if t.stack.CurrentClass() == nil || !isWithinOwnHierarchy(t.stack.CurrentClass(), classSym) {
		t.diag.FieldNotAccess(ex.Pos(), ex.Name, "class "+classSym.Name())
		return types.Error
	}
	return v.Type()
}

// isStaticFriendly reports whether sym can be accessed through a class
// name (as opposed to an instance): true for static methods, false for
// instance fields and instance methods.
func isStaticFriendly(sym symbol.Symbol) bool {
	if m, ok := sym.(*symbol.MethodSymbol); ok {
		return m.IsStatic
	}
	return false
}

// isWithinOwnHierarchy reports whether accessing class's own hierarchy
// (itself or an ancestor) includes target — the protected-style visibility
// rule fields get.
func isWithinOwnHierarchy(accessing, target *symbol.ClassSymbol) bool {
	for c := accessing; c != nil; c = c.Parent {
		if c == target {
			return true
		}
	}
	return false
}

func (t *Typer) lookupClassSymbol(name string) *symbol.ClassSymbol {
	sym, found := t.stack.Global.Find(name)
	if !found {
		return nil
	}
	class, ok := sym.(*symbol.ClassSymbol)
	if !ok {
		return nil
	}
	return class
}

func (t *Typer) checkNewClass(ex *ast.NewClassExpr) *types.Type {
	class := t.lookupClassSymbol(ex.ClassName)
	if class == nil {
		t.diag.ClassNotFound(ex.Pos(), ex.ClassName)
		return types.Error
	}
	ex.Symbol = class
	if class.IsAbstract {
		t.diag.NewAbstractClass(ex.Pos(), ex.ClassName)
		return types.Error
	}
	return class.Type()
}

func (t *Typer) checkNewArray(ex *ast.NewArrayExpr) *types.Type {
	elem := t.resolveTypeForNewArray(ex.ElemType)
	lenType := t.checkExpr(ex.Length)
	if lenType.NoError() && !lenType.Eq(types.Int) {
		t.diag.BadNewArrayLength(ex.Pos())
	}
	if elem.IsVoid() || !elem.NoError() {
		return types.NewArray(types.Error)
	}
	return types.NewArray(elem)
}

// resolveTypeForNewArray resolves a `new T[n]` element type. Naming already
// validated every type annotation that appears on a declaration; `new`
// expressions are the one place a type name is written directly inside an
// expression, so Typing resolves it here against the global scope, mirroring
// naming.resolveType.
func (t *Typer) resolveTypeForNewArray(node ast.TypeNode) *types.Type {
	switch n := node.(type) {
	case *ast.TypeIdent:
		switch n.Name {
		case "int":
			return types.Int
		case "bool":
			return types.Bool
		case "string":
			return types.String
		case "void":
			return types.Void
		default:
			class := t.lookupClassSymbol(n.Name)
			if class == nil {
				t.diag.ClassNotFound(n.Pos(), n.Name)
				return types.Error
			}
			return class.Type()
		}
	case *ast.TypeArray:
		elem := t.resolveTypeForNewArray(n.Elem)
		if elem.IsVoid() || !elem.NoError() {
			return types.NewArray(types.Error)
		}
		return types.NewArray(elem)
	case *ast.TypeFunLit:
		ret := t.resolveTypeForNewArray(n.Ret)
		args := make([]*types.Type, len(n.Params))
		for i, p := range n.Params {
			args[i] = t.resolveTypeForNewArray(p)
		}
		return types.NewFun(ret, args...)
	default:
		return types.Error
	}
}

func (t *Typer) checkIndexSel(ex *ast.IndexSelExpr) *types.Type {
	arrType := t.checkExpr(ex.Array)
	idxType := t.checkExpr(ex.Index)
	if idxType.NoError() && !idxType.Eq(types.Int) {
		t.diag.NotArray(ex.Pos())
	}
	if !arrType.NoError() {
		return types.Error
	}
	if !arrType.IsArray() {
		t.diag.NotArray(ex.Pos())
		return types.Error
	}
	return arrType.Elem()
}

func (t *Typer) checkClassTest(ex *ast.ClassTestExpr) *types.Type {
	operand := t.checkExpr(ex.Operand)
	if operand.NoError() && !operand.IsClass() {
		t.diag.NotClass(ex.Pos(), operand.String())
	}
	class := t.lookupClassSymbol(ex.ClassName)
	if class == nil {
		t.diag.ClassNotFound(ex.Pos(), ex.ClassName)
		return types.Bool
	}
	ex.Symbol = class
	return types.Bool
}

func (t *Typer) checkClassCast(ex *ast.ClassCastExpr) *types.Type {
	operand := t.checkExpr(ex.Operand)
	if operand.NoError() && !operand.IsClass() {
		t.diag.NotClass(ex.Pos(), operand.String())
	}
	class := t.lookupClassSymbol(ex.ClassName)
	if class == nil {
		t.diag.ClassNotFound(ex.Pos(), ex.ClassName)
		return types.Error
	}
	ex.Symbol = class
	return class.Type()
}

// checkLambda type-checks a lambda body and infers its result type as the
// join of every return statement's expression type it collected along the
// way, folding the empty case to void. Its body was already wrapped and
// scoped by Naming, block or expression alike.
func (t *Typer) checkLambda(ex *ast.LambdaExpr) *types.Type {
	t.stack.Open(ex.Scope)
	t.checkBlock(ex.Body)
	t.stack.Close()

	lam := ex.Symbol
	result := types.Void
	hasNonVoidReturn := false
	for _, rt := range lam.ReturnTypes {
		if !rt.IsVoid() {
			hasNonVoidReturn = true
		}
	}
	if len(lam.ReturnTypes) > 0 {
		result = types.Join(lam.ReturnTypes)
		if !result.NoError() {
			t.diag.IncompatibleReturn(ex.Pos())
		}
	}
	if hasNonVoidReturn && !ex.Body.GetReturns() {
		t.diag.MissingReturn(ex.Body.Pos())
	}

	lam.FinalizeReturnType(result)
	ex.ReturnType = result
	return lam.Type()
}

// checkCall dispatches a call expression across its three shapes: the
// `.length()` array intrinsic, a receiver-qualified call (a method, a
// callable field, or an immediate lambda invocation when Name is empty),
// and an unqualified call resolved against the active scope chain.
func (t *Typer) checkCall(ex *ast.CallExpr) *types.Type {
	if ex.IsArrayLength {
		return t.checkLengthCall(ex)
	}
	if ex.Receiver != nil {
		return t.checkCallWithReceiver(ex)
	}
	return t.checkCallUnqualified(ex)
}

// checkLengthCall handles the `.length()` intrinsic. Its receiver's type is
// only known once Typing runs, so — unlike a genuine array-only builtin —
// it must also account for a class receiver (a regular field/method lookup
// for a member literally named "length") and for anything that is neither
// an array nor a class, which gets NotClassField rather than NotArray: the
// intrinsic isn't "wrong shape of array", it's "not accessible through this
// type at all".
func (t *Typer) checkLengthCall(ex *ast.CallExpr) *types.Type {
	recvType := t.checkExpr(ex.Receiver)
	for _, a := range ex.Args {
		t.checkExpr(a)
	}
	if !recvType.NoError() {
		return types.Error
	}

	switch {
	case recvType.IsArray():
		if len(ex.Args) != 0 {
			t.diag.BadLengthArg(ex.Pos(), len(ex.Args))
		}
		return types.Int
	case recvType.IsClass():
		classSym := t.lookupClassSymbol(recvType.ClassName())
		if classSym == nil {
			return types.Error
		}
		sym, found := classSym.Scope.Lookup("length")
		if !found {
			t.diag.FieldNotFound(ex.Pos(), "length", classSym.Name())
			return types.Error
		}
		ex.Symbol = sym
		method, isMethod := sym.(*symbol.MethodSymbol)
		if !isMethod {
			t.diag.NotCallable(ex.Pos(), sym.Type().String())
			return types.Error
		}
		if len(ex.Args) != len(method.Type().Args()) {
			t.diag.BadArgCount(ex.Pos(), "length", len(method.Type().Args()), len(ex.Args))
		}
		return method.Type().Ret()
	default:
		t.diag.NotClassField(ex.Pos(), "length", recvType.String())
		return types.Error
	}
}

func (t *Typer) checkCallWithReceiver(ex *ast.CallExpr) *types.Type {
	if ex.Name == "" {
		return t.checkDirectInvocation(ex)
	}

	if recv, ok := ex.Receiver.(*ast.VarSel); ok && recv.IsClassName {
		class := recv.Symbol.(*symbol.ClassSymbol)
		sym, found := class.Scope.Lookup(ex.Name)
		if !found {
			t.diag.FieldNotFound(ex.Pos(), ex.Name, class.Name())
			return types.Error
		}
		method, isMethod := sym.(*symbol.MethodSymbol)
		if !isMethod || !method.IsStatic {
			t.diag.NotClassField(ex.Pos(), ex.Name, class.Name())
			return types.Error
		}
		ex.Symbol = method
		return t.checkArgsAgainstFun(ex.Pos(), ex.Name, method.Type(), ex.Args)
	}

	recvType := t.checkExpr(ex.Receiver)
	if !recvType.NoError() {
		return types.Error
	}
	if !recvType.IsClass() {
		t.diag.NotClass(ex.Pos(), recvType.String())
		return types.Error
	}
	classSym := t.lookupClassSymbol(recvType.ClassName())
	if classSym == nil {
		return types.Error
	}
	sym, found := classSym.Scope.Lookup(ex.Name)
	if !found {
		t.diag.FieldNotFound(ex.Pos(), ex.Name, classSym.Name())
		return types.Error
	}
	ex.Symbol = sym

	switch s := sym.(type) {
	case *symbol.MethodSymbol:
		return t.checkArgsAgainstFun(ex.Pos(), ex.Name, s.Type(), ex.Args)
	case *symbol.VarSymbol:
		if t.stack.CurrentClass() == nil || !isWithinOwnHierarchy(t.stack.CurrentClass(), classSym) {
			t.diag.FieldNotAccess(ex.Pos(), ex.Name, "class "+classSym.Name())
			return types.Error
		}
		if !s.Type().IsFun() {
			t.diag.NotCallable(ex.Pos(), s.Type().String())
			return types.Error
		}
		return t.checkArgsAgainstFun(ex.Pos(), ex.Name, s.Type(), ex.Args)
	default:
		return types.Error
	}
}

// checkDirectInvocation handles `receiver(args...)`, where receiver is
// itself an expression of function type rather than a named member —
// chiefly an immediately invoked lambda literal, which gets the lambda-
// specific arity diagnostic rather than the named-callee one.
func (t *Typer) checkDirectInvocation(ex *ast.CallExpr) *types.Type {
	recvType := t.checkExpr(ex.Receiver)
	if !recvType.NoError() {
		return types.Error
	}
	if !recvType.IsFun() {
		t.diag.NotCallable(ex.Pos(), recvType.String())
		return types.Error
	}
	if _, isLambda := ex.Receiver.(*ast.LambdaExpr); isLambda {
		return t.checkArgsAgainstLambda(ex.Pos(), recvType, ex.Args)
	}
	return t.checkArgsAgainstFun(ex.Pos(), "", recvType, ex.Args)
}

func (t *Typer) checkCallUnqualified(ex *ast.CallExpr) *types.Type {
	lookupPos := ex.Pos()
	if defPos, ok := t.stack.DefiningPos(ex.Name); ok {
		lookupPos = defPos
	}
	sym, found := t.stack.LookupBefore(ex.Name, lookupPos)
	if !found {
		t.diag.UndeclVar(ex.Pos(), ex.Name)
		return types.Error
	}
	ex.Symbol = sym

	switch s := sym.(type) {
	case *symbol.MethodSymbol:
		method := t.stack.CurrentMethod()
		if !s.IsStatic {
			if method != nil && method.IsStatic {
				t.diag.RefNonStatic(ex.Pos(), method.Name(), ex.Name)
				return types.Error
			}
			t.recordThisCapture()
		}
		return t.checkArgsAgainstFun(ex.Pos(), ex.Name, s.Type(), ex.Args)
	case *symbol.VarSymbol:
		if s.IsMember {
			method := t.stack.CurrentMethod()
			if method != nil && method.IsStatic {
				t.diag.RefNonStatic(ex.Pos(), method.Name(), ex.Name)
				return types.Error
			}
			t.recordThisCapture()
		} else {
			t.recordCapture(s)
		}
		if !s.Type().IsFun() {
			t.diag.NotCallable(ex.Pos(), s.Type().String())
			return types.Error
		}
		return t.checkArgsAgainstFun(ex.Pos(), ex.Name, s.Type(), ex.Args)
	default:
		return types.Error
	}
}

// checkArgsAgainstFun type-checks every argument (so each still gets a
// recorded type even on a mismatch) and reports arity/type mismatches
// against fun's signature.
func (t *Typer) checkArgsAgainstFun(pos source.Position, name string, fun *types.Type, args []ast.Expression) *types.Type {
	expected := fun.Args()
	for i, a := range args {
		t.checkExpr(a)
		if i >= len(expected) {
			continue
		}
		at := a.GetType()
		if at.NoError() && expected[i].NoError() && !at.SubtypeOf(expected[i]) {
			t.diag.BadArgType(pos, i+1, at.String(), expected[i].String())
		}
	}
	if len(args) != len(expected) {
		t.diag.BadArgCount(pos, name, len(expected), len(args))
	}
	return fun.Ret()
}

func (t *Typer) checkArgsAgainstLambda(pos source.Position, fun *types.Type, args []ast.Expression) *types.Type {
	expected := fun.Args()
	for i, a := range args {
		t.checkExpr(a)
		if i >= len(expected) {
			continue
		}
		at := a.GetType()
		if at.NoError() && expected[i].NoError() && !at.SubtypeOf(expected[i]) {
			t.diag.BadArgType(pos, i+1, at.String(), expected[i].String())
		}
	}
	if len(args) != len(expected) {
		t.diag.BadCountArgLambda(pos, len(expected), len(args))
	}
	return fun.Ret()
}
