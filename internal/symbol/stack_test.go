package symbol

import (
	"testing"

	"github.com/corvid-lang/sema/internal/source"
	"github.com/corvid-lang/sema/internal/types"
)

func TestStackLookupPrefersInnermostScope(t *testing.T) {
	global := NewGlobalScope()
	stack := NewStack(global)

	outer := NewScope(ScopeLocal, global)
	inner := NewScope(ScopeLocal, outer)
	stack.Open(outer)
	outer.Declare(NewVar("x", types.Int, source.Position{}, outer))
	stack.Open(inner)
	inner.Declare(NewVar("x", types.Bool, source.Position{}, inner))

	sym, ok := stack.Lookup("x")
	if !ok || !sym.Type().Eq(types.Bool) {
		t.Fatalf("Lookup should find the innermost declaration of x (bool), got %v", sym)
	}
}

func TestStackLookupBeforeSkipsLaterLocalDecl(t *testing.T) {
	global := NewGlobalScope()
	stack := NewStack(global)
	block := NewScope(ScopeLocal, global)
	stack.Open(block)

	laterPos := source.Position{Line: 10}
	block.Declare(NewVar("x", types.Int, laterPos, block))

	usePos := source.Position{Line: 5}
	if _, ok := stack.LookupBefore("x", usePos); ok {
		t.Fatalf("LookupBefore should not see a local declared after the use site")
	}
}

func TestStackFindConflictStopsAtClassBoundary(t *testing.T) {
	global := NewGlobalScope()
	stack := NewStack(global)

	classScope := NewScope(ScopeClass, nil)
	classScope.Declare(NewVar("x", types.Int, source.Position{}, classScope))
	stack.Open(classScope)

	formal := NewScope(ScopeFormal, classScope)
	stack.Open(formal)
	local := NewScope(ScopeLocal, formal)
	stack.Open(local)

	if _, ok := stack.FindConflict("x"); ok {
		t.Fatalf("a local may shadow a class member freely: FindConflict should not see across the class boundary")
	}
}

func TestStackCloseMergesCaptureIntoOuterLambda(t *testing.T) {
	global := NewGlobalScope()
	stack := NewStack(global)

	outerLambdaScope := NewScope(ScopeLambda, global)
	outerLambda := NewLambda(source.Position{}, nil, outerLambdaScope)
	outerLambdaScope.Owner = outerLambda
	stack.Open(outerLambdaScope)

	innerLambdaScope := NewScope(ScopeLambda, outerLambdaScope)
	innerLambda := NewLambda(source.Position{}, nil, innerLambdaScope)
	innerLambdaScope.Owner = innerLambda
	stack.Open(innerLambdaScope)

	captured := NewVar("g", types.Int, source.Position{}, global)
	innerLambda.Capture(captured)

	stack.Close() // close inner lambda

	if !outerLambda.Captured[captured] {
		t.Fatalf("closing an inner lambda should propagate its outer-defined captures to the enclosing lambda")
	}
}

func TestStackCloseDropsCaptureOfOuterLambdasOwnVariable(t *testing.T) {
	global := NewGlobalScope()
	stack := NewStack(global)

	outerLambdaScope := NewScope(ScopeLambda, global)
	outerLambda := NewLambda(source.Position{}, nil, outerLambdaScope)
	outerLambdaScope.Owner = outerLambda
	stack.Open(outerLambdaScope)

	// A local declared directly in the outer lambda's own body, e.g. its
	// parameter or a `var` inside it.
	ownVar := NewVar("p", types.Int, source.Position{}, outerLambdaScope)

	innerLambdaScope := NewScope(ScopeLambda, outerLambdaScope)
	innerLambda := NewLambda(source.Position{}, nil, innerLambdaScope)
	innerLambdaScope.Owner = innerLambda
	stack.Open(innerLambdaScope)

	innerLambda.Capture(ownVar)

	stack.Close() // close inner lambda

	if outerLambda.Captured[ownVar] {
		t.Fatalf("a variable defined within the outer lambda itself must not be recorded in its own Captured set (captured(L) ∩ definedWithin(L) = ∅)")
	}
}

func TestStackDefiningWindow(t *testing.T) {
	stack := NewStack(NewGlobalScope())
	if stack.IsDefining("x") {
		t.Fatalf("x should not be defining before AddDefining")
	}
	stack.AddDefining("x", source.Position{Line: 1})
	if !stack.IsDefining("x") {
		t.Fatalf("x should be defining after AddDefining")
	}
	stack.RemoveDefining("x")
	if stack.IsDefining("x") {
		t.Fatalf("x should not be defining after RemoveDefining")
	}
}

func TestStackCloseOnEmptyStackPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Close on an empty stack should panic: a leaked scope is a caller bug")
		}
	}()
	NewStack(NewGlobalScope()).Close()
}
