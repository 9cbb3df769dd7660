// Package naming implements the first of the two semantic-analysis passes:
// it builds the class graph, creates class/method/field symbols, checks
// overrides and abstract-class completeness, and locates the program's
// entry point. It never inspects expression types — that is Typing's job.
package naming

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/diagnostic"
	"github.com/corvid-lang/sema/internal/symbol"
	"github.com/corvid-lang/sema/internal/types"
)

// Namer walks a program once, declaring every class, field, method, and
// local, and records its findings directly onto the AST's annotation
// fields.
type Namer struct {
	prog   *ast.Program
	diag   *diagnostic.Sink
	global *symbol.Scope
	stack  *symbol.Stack

	defs     map[string]*ast.ClassDef // name -> first declaration seen
	parents  map[*ast.ClassDef]*ast.ClassDef
	resolved map[*ast.ClassDef]bool // set once resolveMembers has run for a class
	abort    bool // set on a missing-parent or cyclic-inheritance error; a plain duplicate-name conflict does not abort
}

// Run builds the symbol/scope graph for prog, recording diagnostics into
// diag, and returns the resulting global scope. Run also sets
// prog.GlobalScope.
func Run(prog *ast.Program, diag *diagnostic.Sink) *symbol.Scope {
	n := &Namer{
		prog:    prog,
		diag:    diag,
		global:   symbol.NewGlobalScope(),
		defs:     make(map[string]*ast.ClassDef),
		parents:  make(map[*ast.ClassDef]*ast.ClassDef),
		resolved: make(map[*ast.ClassDef]bool),
	}
	n.stack = symbol.NewStack(n.global)

	n.buildClassGraph()
	if n.abort {
		prog.GlobalScope = n.global
		return n.global
	}

	for _, def := range n.prog.Classes {
		if n.defs[def.Name] == def {
			n.classSymbol(def)
		}
	}
	for _, def := range n.prog.Classes {
		if n.defs[def.Name] == def {
			n.resolveMembers(def)
		}
	}
	n.checkAbstractCompleteness()
	n.findEntryPoint()

	prog.GlobalScope = n.global
	return n.global
}

// buildClassGraph is step 1: collect unique top-level class declarations
// and resolve parent references, then check the resulting graph for
// inheritance cycles.
func (n *Namer) buildClassGraph() {
	for _, def := range n.prog.Classes {
		if prior, exists := n.defs[def.Name]; exists {
			n.diag.DeclConflict(def.Pos(), def.Name, prior.Pos())
			continue
		}
		n.defs[def.Name] = def
	}

	for _, def := range n.prog.Classes {
		if n.defs[def.Name] != def || def.ParentName == "" {
			continue // a shadowed duplicate, or no explicit parent
		}
		parent, ok := n.defs[def.ParentName]
		if !ok {
			n.diag.ClassNotFound(def.Pos(), def.ParentName)
			def.ParentName = ""
			n.abort = true
			continue
		}
		n.parents[def] = parent
	}

	n.checkCycles()
}

// checkCycles detects inheritance cycles by timestamp-coloring: each walk
// up the parent chain is stamped with a fresh id, and revisiting a node
// already stamped with the current walk's id means the chain looped back
// on itself. Classes are walked in declaration order so the diagnostic
// position is deterministic regardless of map iteration order.
func (n *Namer) checkCycles() {
	stamp := make(map[*ast.ClassDef]int)
	walk := 0
	for _, def := range n.prog.Classes {
		if n.defs[def.Name] != def {
			continue
		}
		if _, seen := stamp[def]; seen {
			continue
		}
		walk++
		cur := def
		for cur != nil {
			if stamp[cur] == walk {
				n.diag.BadInheritance(def.Pos())
				n.abort = true
				break
			}
			stamp[cur] = walk
			cur = n.parents[cur]
		}
	}
}

// classSymbol is step 2: create cur's class symbol, recursively creating
// its parent's symbol first if needed. Memoized via def.Symbol.
func (n *Namer) classSymbol(def *ast.ClassDef) *symbol.ClassSymbol {
	if def.Symbol != nil {
		return def.Symbol
	}

	var parentSym *symbol.ClassSymbol
	var parentType *types.Type
	var parentScope *symbol.Scope
	if parentDef, ok := n.parents[def]; ok {
		parentSym = n.classSymbol(parentDef)
		parentType = parentSym.Type()
		parentScope = parentSym.Scope
	}

	classType := types.NewClass(def.Name, parentType)
	scope := symbol.NewScope(symbol.ScopeClass, parentScope)
	sym := symbol.NewClass(def.Name, classType, def.Pos(), scope, parentSym)
	sym.IsAbstract = def.IsAbstract
	scope.Owner = sym

	n.global.Declare(sym)
	def.Symbol = sym
	def.Scope = scope
	return sym
}

// resolveMembers is step 3: open def's class scope and declare every
// field and method. A subclass's override/shadow checks only make sense
// once its superclass's own members are already declared, so this
// recurses into def's parent first — mirroring classSymbol's memoized
// parent-first walk — regardless of the two classes' declaration order.
func (n *Namer) resolveMembers(def *ast.ClassDef) {
	if n.resolved[def] {
		return
	}
	n.resolved[def] = true

	if parentDef, ok := n.parents[def]; ok {
		n.resolveMembers(parentDef)
	}

	n.stack.Open(def.Scope)
	defer n.stack.Close()

	for _, field := range def.Fields {
		n.declareField(def, field)
	}
	for _, method := range def.Methods {
		n.declareMethod(def, method)
	}
}

func (n *Namer) declareField(def *ast.ClassDef, field *ast.FieldDef) {
	typ := n.resolveType(field.Type)
	if typ.IsVoid() {
		n.diag.BadVarType(field.Pos(), field.Name)
	}
	if prior, ok := n.stack.FindConflict(field.Name); ok {
		if priorVar, isVar := prior.(*symbol.VarSymbol); isVar && priorVar.IsMember {
			n.diag.OverridingVar(field.Pos(), field.Name)
			return
		}
		n.diag.DeclConflict(field.Pos(), field.Name, prior.Pos())
		return
	}
	sym := symbol.NewVar(field.Name, typ, field.Pos(), def.Scope)
	sym.IsMember = true
	n.stack.Declare(sym)
	field.Symbol = sym
}

func (n *Namer) declareMethod(def *ast.ClassDef, method *ast.MethodDef) {
	formal := symbol.NewScope(symbol.ScopeFormal, def.Scope)

	var params []*types.Type
	n.stack.Open(formal)
	if !method.IsStatic {
		this := symbol.NewVar("this", def.Symbol.Type(), method.Pos(), formal)
		n.stack.Declare(this)
	}
	for _, p := range method.Params {
		ptype := n.resolveType(p.Type)
		if ptype.IsVoid() {
			n.diag.VoidAsPara(p.Pos())
		}
		psym := symbol.NewVar(p.Name, ptype, p.Pos(), formal)
		psym.IsParameter = true
		if !n.stack.Declare(psym) {
			n.diag.DeclConflict(p.Pos(), p.Name, p.Pos())
		} else {
			p.Symbol = psym
		}
		params = append(params, ptype)
	}
	retType := n.resolveType(method.RetType)
	sig := types.NewFun(retType, params...)
	n.stack.Close()

	method.Formal = formal
	method.ReturnType = retType

	sym := n.declareMethodSymbol(def, method, sig, formal)
	if sym == nil {
		return
	}
	method.Symbol = sym
	formal.Owner = sym

	if !method.IsAbstract && method.Body != nil {
		n.stack.Open(formal)
		n.visitBlock(method.Body)
		n.stack.Close()
	}
}

// declareMethodSymbol applies the override/conflict rules from step 3:
// a same-name, non-static method in an ancestor scope must have its
// signature respected by subtyping; anything else is a plain conflict.
func (n *Namer) declareMethodSymbol(def *ast.ClassDef, method *ast.MethodDef, sig *types.Type, formal *symbol.Scope) *symbol.MethodSymbol {
	prior, found := n.stack.FindConflict(method.Name)
	if !found {
		sym := symbol.NewMethod(method.Name, sig, method.Pos(), formal, def.Symbol)
		sym.IsStatic = method.IsStatic
		sym.IsAbstract = method.IsAbstract
		n.stack.Declare(sym)
		return sym
	}

	priorMethod, isMethod := prior.(*symbol.MethodSymbol)
	if !isMethod {
		n.diag.DeclConflict(method.Pos(), method.Name, prior.Pos())
		return nil
	}
	if method.IsStatic || priorMethod.IsStatic || priorMethod.Owner == def.Symbol {
		n.diag.DeclConflict(method.Pos(), method.Name, prior.Pos())
		return nil
	}
	if method.IsAbstract && !priorMethod.IsAbstract {
		n.diag.DeclConflict(method.Pos(), method.Name, prior.Pos())
		return nil
	}
	if !sig.SubtypeOf(priorMethod.Type()) {
		n.diag.BadOverride(method.Pos(), method.Name, priorMethod.Owner.Name())
		return nil
	}
	sym := symbol.NewMethod(method.Name, sig, method.Pos(), formal, def.Symbol)
	sym.IsStatic = method.IsStatic
	sym.IsAbstract = method.IsAbstract
	n.stack.Declare(sym)
	return sym
}

// checkAbstractCompleteness is step 4.
func (n *Namer) checkAbstractCompleteness() {
	for _, def := range n.prog.Classes {
		if def.Symbol == nil {
			continue
		}
		if def.Symbol.IsAbstract {
			continue
		}
		if len(def.Symbol.AbstractMethods()) > 0 {
			n.diag.BadAbstractMethod(def.Pos(), def.Name)
		}
	}
}

// findEntryPoint is step 5.
func (n *Namer) findEntryPoint() {
	mainDef, ok := n.defs["Main"]
	if !ok || mainDef.Symbol == nil || mainDef.Symbol.IsAbstract {
		n.diag.NoMainClass(n.prog.Pos())
		return
	}
	mainSym, ok := mainDef.Scope.Find("main")
	if !ok {
		n.diag.NoMainClass(n.prog.Pos())
		return
	}
	method, ok := mainSym.(*symbol.MethodSymbol)
	if !ok || !method.IsStatic || !method.Type().Ret().IsVoid() || len(method.Type().Args()) != 0 {
		n.diag.NoMainClass(n.prog.Pos())
		return
	}
	mainDef.Symbol.IsMain = true
	method.IsMainEntry = true
}

// resolveType resolves a syntactic TypeNode to a *types.Type, reporting
// ClassNotFound for an unresolvable class-name identifier. A nil node (a
// method with no declared return, which the grammar disallows in practice)
// resolves to void defensively.
func (n *Namer) resolveType(node ast.TypeNode) *types.Type {
	switch t := node.(type) {
	case nil:
		return types.Void
	case *ast.TypeIdent:
		switch t.Name {
		case "int":
			return types.Int
		case "bool":
			return types.Bool
		case "string":
			return types.String
		case "void":
			return types.Void
		default:
			def, ok := n.defs[t.Name]
			if !ok || def.Symbol == nil {
				n.diag.ClassNotFound(t.Pos(), t.Name)
				return types.Error
			}
			return def.Symbol.Type()
		}
	case *ast.TypeArray:
		elem := n.resolveType(t.Elem)
		if elem.IsVoid() || !elem.NoError() {
			n.diag.BadArrElement(t.Pos())
			return types.NewArray(types.Error)
		}
		return types.NewArray(elem)
	case *ast.TypeFunLit:
		ret := n.resolveType(t.Ret)
		args := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			args[i] = n.resolveType(p)
			if args[i].IsVoid() {
				n.diag.VoidAsPara(p.Pos())
			}
		}
		return types.NewFunLit(renderFunLit(t), ret, args...)
	default:
		return types.Error
	}
}
