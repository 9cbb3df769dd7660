package symbol

import (
	"testing"

	"github.com/corvid-lang/sema/internal/source"
	"github.com/corvid-lang/sema/internal/types"
)

func TestScopeDeclareRejectsDuplicateNames(t *testing.T) {
	scope := NewScope(ScopeLocal, nil)
	a := NewVar("x", types.Int, source.Position{Line: 1}, scope)
	b := NewVar("x", types.Bool, source.Position{Line: 2}, scope)

	if !scope.Declare(a) {
		t.Fatalf("first declaration of x should succeed")
	}
	if scope.Declare(b) {
		t.Fatalf("second declaration of x should fail: names must be pairwise distinct within a scope")
	}
}

func TestScopeLookupWalksStaticParentChain(t *testing.T) {
	global := NewGlobalScope()
	outer := NewVar("g", types.Int, source.Position{}, global)
	global.Declare(outer)

	child := NewScope(ScopeLocal, global)
	if _, ok := child.Find("g"); ok {
		t.Fatalf("Find should not see parent-scope symbols")
	}
	if sym, ok := child.Lookup("g"); !ok || sym != outer {
		t.Fatalf("Lookup should find symbols declared in a static parent scope")
	}
}

func TestClassSymbolAbstractMethodsOverrideSuppression(t *testing.T) {
	baseScope := NewScope(ScopeClass, nil)
	base := NewClass("Base", nil, source.Position{}, baseScope, nil)
	baseScope.Declare(NewMethod("foo", types.NewFun(types.Int), source.Position{}, nil, base))
	baseScope.Symbols()[0].(*MethodSymbol).IsAbstract = true

	leafScope := NewScope(ScopeClass, nil)
	leaf := NewClass("Leaf", nil, source.Position{}, leafScope, base)
	leafScope.Declare(NewMethod("foo", types.NewFun(types.Int), source.Position{}, nil, leaf))

	if got := leaf.AbstractMethods(); len(got) != 0 {
		t.Fatalf("Leaf concretely overrides foo, want no abstract methods left, got %v", got)
	}
}

func TestClassSymbolAbstractMethodsInherited(t *testing.T) {
	baseScope := NewScope(ScopeClass, nil)
	base := NewClass("Base", nil, source.Position{}, baseScope, nil)
	m := NewMethod("foo", types.NewFun(types.Int), source.Position{}, nil, base)
	m.IsAbstract = true
	baseScope.Declare(m)

	leafScope := NewScope(ScopeClass, nil)
	leaf := NewClass("Leaf", nil, source.Position{}, leafScope, base)

	got := leaf.AbstractMethods()
	if !got["foo"] {
		t.Fatalf("Leaf inherits an unimplemented abstract method foo, want it reported, got %v", got)
	}
}

func TestLambdaSymbolFinalizeReturnType(t *testing.T) {
	l := NewLambda(source.Position{Line: 3, Column: 1}, []*types.Type{types.Int}, NewScope(ScopeLambda, nil))
	if !l.Type().Ret().Eq(types.Null) {
		t.Fatalf("a fresh lambda symbol's signature should start with a null result type")
	}
	l.FinalizeReturnType(types.Bool)
	if !l.Type().Ret().Eq(types.Bool) {
		t.Fatalf("FinalizeReturnType should update the signature's result type")
	}
}

func TestLambdaSymbolCapture(t *testing.T) {
	l := NewLambda(source.Position{}, nil, NewScope(ScopeLambda, nil))
	v := NewVar("x", types.Int, source.Position{}, nil)
	l.Capture(v)
	if !l.Captured[v] {
		t.Fatalf("Capture should record the symbol in Captured")
	}
}
