package naming

import (
	"testing"

	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/diagnostic"
)

func mainClass() *ast.ClassDef {
	return &ast.ClassDef{
		Name: "Main",
		Methods: []*ast.MethodDef{
			{Name: "main", IsStatic: true, RetType: &ast.TypeIdent{Name: "void"}, Body: &ast.Block{}},
		},
	}
}

func TestRunDetectsDuplicateClassNames(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.ClassDef{
		mainClass(),
		{Name: "Foo"},
		{Name: "Foo"},
	}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.DeclConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DeclConflict for the duplicate Foo declaration, got %s", diag.Format())
	}
}

func TestRunDetectsInheritanceCycle(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.ClassDef{
		mainClass(),
		{Name: "A", ParentName: "B"},
		{Name: "B", ParentName: "A"},
	}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.BadInheritance {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BadInheritance for the A/B inheritance cycle, got %s", diag.Format())
	}
}

func TestRunDetectsMissingParent(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.ClassDef{
		mainClass(),
		{Name: "A", ParentName: "Ghost"},
	}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.ClassNotFound {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ClassNotFound for the missing parent Ghost, got %s", diag.Format())
	}
}

func TestRunAcceptsCompatibleOverride(t *testing.T) {
	base := &ast.ClassDef{
		Name: "Shape",
		Methods: []*ast.MethodDef{
			{Name: "area", RetType: &ast.TypeIdent{Name: "int"}, Body: &ast.Block{Stmts: []ast.Statement{
				&ast.ReturnStmt{Expr: &ast.IntLit{Value: 0}},
			}}},
		},
	}
	leaf := &ast.ClassDef{
		Name:       "Square",
		ParentName: "Shape",
		Methods: []*ast.MethodDef{
			{Name: "area", RetType: &ast.TypeIdent{Name: "int"}, Body: &ast.Block{Stmts: []ast.Statement{
				&ast.ReturnStmt{Expr: &ast.IntLit{Value: 1}},
			}}},
		},
	}
	prog := &ast.Program{Classes: []*ast.ClassDef{mainClass(), base, leaf}}
	diag := diagnostic.New()
	Run(prog, diag)
	if diag.HasErrors() {
		t.Fatalf("a same-signature override should be accepted, got %s", diag.Format())
	}
}

func TestRunRejectsIncompatibleOverride(t *testing.T) {
	base := &ast.ClassDef{
		Name: "Shape",
		Methods: []*ast.MethodDef{
			{Name: "area", RetType: &ast.TypeIdent{Name: "int"}, Body: &ast.Block{Stmts: []ast.Statement{
				&ast.ReturnStmt{Expr: &ast.IntLit{Value: 0}},
			}}},
		},
	}
	leaf := &ast.ClassDef{
		Name:       "Square",
		ParentName: "Shape",
		Methods: []*ast.MethodDef{
			{Name: "area", RetType: &ast.TypeIdent{Name: "bool"}, Body: &ast.Block{Stmts: []ast.Statement{
				&ast.ReturnStmt{Expr: &ast.BoolLit{Value: true}},
			}}},
		},
	}
	prog := &ast.Program{Classes: []*ast.ClassDef{mainClass(), base, leaf}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.BadOverride {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BadOverride for the signature-incompatible override, got %s", diag.Format())
	}
}

func TestRunRequiresAbstractCompleteness(t *testing.T) {
	abstractBase := &ast.ClassDef{
		Name:       "Shape",
		IsAbstract: true,
		Methods: []*ast.MethodDef{
			{Name: "area", IsAbstract: true, RetType: &ast.TypeIdent{Name: "int"}},
		},
	}
	incomplete := &ast.ClassDef{Name: "Square", ParentName: "Shape"}
	prog := &ast.Program{Classes: []*ast.ClassDef{mainClass(), abstractBase, incomplete}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.BadAbstractMethod {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BadAbstractMethod for a concrete class missing an abstract method, got %s", diag.Format())
	}
}

func TestRunRejectsOverridingAFieldWithAField(t *testing.T) {
	base := &ast.ClassDef{
		Name:   "Base",
		Fields: []*ast.FieldDef{{Name: "x", Type: &ast.TypeIdent{Name: "int"}}},
	}
	leaf := &ast.ClassDef{
		Name:       "Leaf",
		ParentName: "Base",
		Fields:     []*ast.FieldDef{{Name: "x", Type: &ast.TypeIdent{Name: "int"}}},
	}
	prog := &ast.Program{Classes: []*ast.ClassDef{mainClass(), base, leaf}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.OverridingVar {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OverridingVar: fields may not be re-declared in a subclass, got %s", diag.Format())
	}
}

func TestRunFindsEntryPoint(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.ClassDef{mainClass()}}
	diag := diagnostic.New()
	global := Run(prog, diag)
	if diag.HasErrors() {
		t.Fatalf("unexpected errors: %s", diag.Format())
	}
	sym, ok := global.Find("Main")
	if !ok {
		t.Fatalf("Main class symbol should be declared in the global scope")
	}
	classSym := sym.(interface{ Name() string })
	if classSym.Name() != "Main" {
		t.Fatalf("unexpected class symbol name %q", classSym.Name())
	}
}

func TestRunReportsNoMainWithoutMainClass(t *testing.T) {
	prog := &ast.Program{Classes: []*ast.ClassDef{{Name: "Helper"}}}
	diag := diagnostic.New()
	Run(prog, diag)

	found := false
	for _, d := range diag.All() {
		if d.Kind == diagnostic.NoMainClass {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NoMainClass when no Main class is declared, got %s", diag.Format())
	}
}
