// Package symbol implements the symbol/scope graph shared by the naming and
// typing passes: the four symbol variants, the five scope kinds, and the
// scope stack used as a live evaluation context while walking the AST.
package symbol

import (
	"github.com/corvid-lang/sema/internal/source"
	"github.com/corvid-lang/sema/internal/types"
)

// Kind distinguishes the four symbol variants. Dispatch on a Symbol is
// exhaustive over these four cases rather than via virtual methods, so both
// passes can add a new case without touching the symbol types themselves.
type Kind int

const (
	KindVariable Kind = iota
	KindMethod
	KindClass
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindMethod:
		return "method"
	case KindClass:
		return "class"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// Symbol is the common interface every variant satisfies.
type Symbol interface {
	Name() string
	Pos() source.Position
	Type() *types.Type
	SymbolKind() Kind
}

// VarSymbol is a variable: a local, a parameter, or a field.
type VarSymbol struct {
	name        string
	typ         *types.Type
	pos         source.Position
	scope       *Scope // the scope this symbol was declared in
	IsParameter bool
	IsMember    bool
	IsLocal     bool
}

func NewVar(name string, typ *types.Type, pos source.Position, scope *Scope) *VarSymbol {
	return &VarSymbol{name: name, typ: typ, pos: pos, scope: scope}
}

func (v *VarSymbol) Name() string            { return v.name }
func (v *VarSymbol) Pos() source.Position    { return v.pos }
func (v *VarSymbol) Type() *types.Type       { return v.typ }
func (v *VarSymbol) SymbolKind() Kind        { return KindVariable }
func (v *VarSymbol) Scope() *Scope           { return v.scope }

// SetType refines the symbol's type. The only caller that is allowed to do
// this is the typing pass finishing a `var` declaration: the declared type
// of a `var` local is not known until its initializer has been checked.
func (v *VarSymbol) SetType(t *types.Type) { v.typ = t }

// MethodSymbol is a class method (static or instance, concrete or
// abstract).
type MethodSymbol struct {
	name        string
	sig         *types.Type // fun(ret, params...)
	pos         source.Position
	Formal      *Scope
	IsStatic    bool
	IsAbstract  bool
	Owner       *ClassSymbol
	IsMainEntry bool
}

func NewMethod(name string, sig *types.Type, pos source.Position, formal *Scope, owner *ClassSymbol) *MethodSymbol {
	return &MethodSymbol{name: name, sig: sig, pos: pos, Formal: formal, Owner: owner}
}

func (m *MethodSymbol) Name() string         { return m.name }
func (m *MethodSymbol) Pos() source.Position { return m.pos }
func (m *MethodSymbol) Type() *types.Type    { return m.sig }
func (m *MethodSymbol) SymbolKind() Kind     { return KindMethod }

// ClassSymbol is a class declaration.
type ClassSymbol struct {
	name       string
	typ        *types.Type
	pos        source.Position
	Scope      *Scope
	Parent     *ClassSymbol // optional
	IsAbstract bool
	IsMain     bool
}

func NewClass(name string, typ *types.Type, pos source.Position, scope *Scope, parent *ClassSymbol) *ClassSymbol {
	return &ClassSymbol{name: name, typ: typ, pos: pos, Scope: scope, Parent: parent}
}

func (c *ClassSymbol) Name() string         { return c.name }
func (c *ClassSymbol) Pos() source.Position { return c.pos }
func (c *ClassSymbol) Type() *types.Type    { return c.typ }
func (c *ClassSymbol) SymbolKind() Kind     { return KindClass }

// AbstractMethods returns the set of method names that are abstract
// somewhere in c's hierarchy and not concretely overridden by c or any
// ancestor closer to c. Walks parent-first so a concrete override in c
// always wins over an abstract declaration further up.
func (c *ClassSymbol) AbstractMethods() map[string]bool {
	var inherited map[string]bool
	if c.Parent != nil {
		inherited = c.Parent.AbstractMethods()
	} else {
		inherited = make(map[string]bool)
	}
	for _, name := range c.Scope.Names() {
		sym, _ := c.Scope.Lookup(name)
		method, ok := sym.(*MethodSymbol)
		if !ok {
			continue
		}
		if method.IsAbstract {
			inherited[name] = true
		} else {
			delete(inherited, name)
		}
	}
	return inherited
}

// LambdaSymbol is a lambda expression. Its signature starts as
// fun(null, params...) and is refined once the body has been typed; its
// name is synthesized from its position so it never collides with a
// source-visible name.
type LambdaSymbol struct {
	name       string
	sig        *types.Type
	pos        source.Position
	Scope      *Scope
	Params     []*types.Type
	ReturnType *types.Type // starts as types.Null
	ReturnTypes []*types.Type
	Captured   map[Symbol]bool
}

func NewLambda(pos source.Position, params []*types.Type, scope *Scope) *LambdaSymbol {
	l := &LambdaSymbol{
		name:       "lambda@" + pos.String(),
		pos:        pos,
		Scope:      scope,
		Params:     params,
		ReturnType: types.Null,
		Captured:   make(map[Symbol]bool),
	}
	l.sig = types.NewFun(types.Null, params...)
	return l
}

func (l *LambdaSymbol) Name() string         { return l.name }
func (l *LambdaSymbol) Pos() source.Position { return l.pos }
func (l *LambdaSymbol) Type() *types.Type    { return l.sig }
func (l *LambdaSymbol) SymbolKind() Kind     { return KindLambda }

// FinalizeReturnType refines the lambda's signature once its result type
// has been inferred (by an explicit return-type join, or directly from an
// expression body).
func (l *LambdaSymbol) FinalizeReturnType(t *types.Type) {
	l.ReturnType = t
	l.sig = types.NewFun(t, l.Params...)
}

// Capture records that sym was referenced from within this lambda and its
// defining scope lies outside the lambda.
func (l *LambdaSymbol) Capture(sym Symbol) {
	l.Captured[sym] = true
}
