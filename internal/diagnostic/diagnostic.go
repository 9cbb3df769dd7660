// Package diagnostic is the append-only, position-ordered collector of
// semantic errors produced by the naming and typing passes.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/corvid-lang/sema/internal/source"
)

// Severity classifies a diagnostic. The naming/typing passes only ever emit
// Error; keeping the field means a future lint-style pass can share this
// sink without a breaking change.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Kind is the closed taxonomy of semantic errors this module can emit.
type Kind int

const (
	DeclConflict Kind = iota
	OverridingVar
	ClassNotFound
	BadInheritance
	BadOverride
	BadAbstractMethod
	NewAbstractClass
	BadVarType
	AssignVarVoid
	BadArrElement
	VoidAsPara
	IncompatBinOp
	IncompatUnOp
	BadTestExpr
	BreakOutOfLoop
	MissingReturn
	BadReturnType
	IncompatibleReturn
	BadArgCount
	BadArgType
	BadLengthArg
	NotCallable
	NotArray
	NotClass
	UndeclVar
	FieldNotFound
	FieldNotAccess
	NotClassField
	AssignMethod
	AssignCapture
	ThisInStaticFunc
	RefNonStatic
	NoMainClass
	BadCountArgLambda
	BadNewArrayLength
	BadPrintArg
)

// Diagnostic is a single semantic error: a position, a kind, and the
// rendered message. Messages are fixed strings parameterized only as the
// taxonomy specifies; test oracles depend on them byte-for-byte.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Pos      source.Position
}

// Sink is the append-only ordered collector every pass writes into.
// Emission never panics, so a statement can accumulate more than one
// diagnostic.
type Sink struct {
	items []Diagnostic
}

// New creates an empty Sink.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) add(pos source.Position, kind Kind, format string, args ...any) {
	s.items = append(s.items, Diagnostic{
		Severity: Error,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the total number of diagnostics recorded.
func (s *Sink) Count() int { return len(s.items) }

// Truncate drops every diagnostic past the first n emitted, leaving s with
// at most n items. A non-positive n is a no-op: callers use 0 to mean "no
// cap" rather than "drop everything".
func (s *Sink) Truncate(n int) {
	if n <= 0 || len(s.items) <= n {
		return
	}
	s.items = s.items[:n]
}

// All returns every diagnostic, sorted by (line, column). The sort is
// stable so diagnostics emitted at the same position keep their relative
// (AST traversal) order.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Before(out[j].Pos)
	})
	return out
}

// Format renders every diagnostic in the wire format test oracles depend
// on byte-for-byte: "*** Error at (L,C): <message>", one per line.
func (s *Sink) Format() string {
	all := s.All()
	lines := make([]string, len(all))
	for i, d := range all {
		lines[i] = fmt.Sprintf("*** Error at %s: %s", d.Pos, d.Message)
	}
	return strings.Join(lines, "\n")
}

// FormatColored renders the same diagnostics as Format but with each
// severity's tag colorized for a terminal. It is a CLI convenience only —
// the byte-for-byte wire format test oracles depend on is Format's alone.
func (s *Sink) FormatColored() string {
	all := s.All()
	lines := make([]string, len(all))
	for i, d := range all {
		tag := severityColor(d.Severity).Sprintf("Error")
		lines[i] = fmt.Sprintf("*** %s at %s: %s", tag, d.Pos, d.Message)
	}
	return strings.Join(lines, "\n")
}

func severityColor(sev Severity) *color.Color {
	switch sev {
	case Warning:
		return color.New(color.FgYellow)
	case Info:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgRed)
	}
}

// --- one typed constructor per taxonomy row ---

func (s *Sink) DeclConflict(pos source.Position, name string, earlier source.Position) {
	s.add(pos, DeclConflict, "declaration of '%s' conflicts with a previous declaration at %s", name, earlier)
}

func (s *Sink) OverridingVar(pos source.Position, name string) {
	s.add(pos, OverridingVar, "overriding variable '%s' is not allowed for variables", name)
}

func (s *Sink) ClassNotFound(pos source.Position, name string) {
	s.add(pos, ClassNotFound, "class '%s' not found", name)
}

func (s *Sink) BadInheritance(pos source.Position) {
	s.add(pos, BadInheritance, "illegal class inheritance (should be acyclic)")
}

func (s *Sink) BadOverride(pos source.Position, method, parentClass string) {
	s.add(pos, BadOverride, "overriding method '%s' doesn't match the type signature in class '%s'", method, parentClass)
}

func (s *Sink) BadAbstractMethod(pos source.Position, class string) {
	s.add(pos, BadAbstractMethod, "'%s' is not abstract and does not override all abstract methods", class)
}

func (s *Sink) NewAbstractClass(pos source.Position, class string) {
	s.add(pos, NewAbstractClass, "cannot instantiate abstract class '%s'", class)
}

func (s *Sink) BadVarType(pos source.Position, name string) {
	s.add(pos, BadVarType, "cannot declare identifier '%s' as void type", name)
}

func (s *Sink) AssignVarVoid(pos source.Position, name string) {
	s.add(pos, AssignVarVoid, "cannot declare identifier '%s' as void type", name)
}

func (s *Sink) BadArrElement(pos source.Position) {
	s.add(pos, BadArrElement, "array element type must be non-void known type")
}

func (s *Sink) VoidAsPara(pos source.Position) {
	s.add(pos, VoidAsPara, "arguments in function type must be non-void known type")
}

func (s *Sink) IncompatBinOp(pos source.Position, lhs, op, rhs string) {
	s.add(pos, IncompatBinOp, "incompatible operands: %s %s %s", lhs, op, rhs)
}

func (s *Sink) IncompatUnOp(pos source.Position, op, operand string) {
	s.add(pos, IncompatUnOp, "incompatible operand: %s %s", op, operand)
}

func (s *Sink) BadTestExpr(pos source.Position) {
	s.add(pos, BadTestExpr, "test expression must have bool type")
}

func (s *Sink) BreakOutOfLoop(pos source.Position) {
	s.add(pos, BreakOutOfLoop, "'break' is only allowed inside a loop")
}

func (s *Sink) MissingReturn(pos source.Position) {
	s.add(pos, MissingReturn, "missing return statement: control reaches end of non-void block")
}

func (s *Sink) BadReturnType(pos source.Position, expected, actual string) {
	s.add(pos, BadReturnType, "incompatible return type: %s given, %s expected", actual, expected)
}

func (s *Sink) IncompatibleReturn(pos source.Position) {
	s.add(pos, IncompatibleReturn, "incompatible return types in blocked expression")
}

func (s *Sink) BadArgCount(pos source.Position, name string, expected, given int) {
	s.add(pos, BadArgCount, "function '%s' expects %d argument(s) but %d given", name, expected, given)
}

func (s *Sink) BadArgType(pos source.Position, index int, given, expected string) {
	s.add(pos, BadArgType, "incompatible argument %d: %s given, %s expected", index, given, expected)
}

func (s *Sink) BadLengthArg(pos source.Position, given int) {
	s.add(pos, BadLengthArg, "function 'length' expects 0 argument(s) but %d given", given)
}

func (s *Sink) NotCallable(pos source.Position, typ string) {
	s.add(pos, NotCallable, "%s is not a callable type", typ)
}

func (s *Sink) NotArray(pos source.Position) {
	s.add(pos, NotArray, "[] can only be applied to arrays")
}

func (s *Sink) NotClass(pos source.Position, typ string) {
	s.add(pos, NotClass, "%s is not a class type", typ)
}

func (s *Sink) UndeclVar(pos source.Position, name string) {
	s.add(pos, UndeclVar, "undeclared variable '%s'", name)
}

func (s *Sink) FieldNotFound(pos source.Position, name, class string) {
	s.add(pos, FieldNotFound, "field '%s' not found in '%s'", name, class)
}

func (s *Sink) FieldNotAccess(pos source.Position, name, class string) {
	s.add(pos, FieldNotAccess, "field '%s' of '%s' not accessible here", name, class)
}

func (s *Sink) NotClassField(pos source.Position, name, class string) {
	s.add(pos, NotClassField, "'%s' is not accessible through '%s'", name, class)
}

func (s *Sink) AssignMethod(pos source.Position, name string) {
	s.add(pos, AssignMethod, "cannot assign value to class member method '%s'", name)
}

func (s *Sink) AssignCapture(pos source.Position) {
	s.add(pos, AssignCapture, "cannot assign value to captured variables in lambda expression")
}

func (s *Sink) ThisInStaticFunc(pos source.Position) {
	s.add(pos, ThisInStaticFunc, "can not use this in static functions")
}

func (s *Sink) RefNonStatic(pos source.Position, method, name string) {
	s.add(pos, RefNonStatic, "can not reference a non-static field '%s' from static method '%s'", name, method)
}

func (s *Sink) NoMainClass(pos source.Position) {
	s.add(pos, NoMainClass, "no legal Main class named 'Main' was found")
}

func (s *Sink) BadCountArgLambda(pos source.Position, expected, given int) {
	s.add(pos, BadCountArgLambda, "lambda expression expects %d argument(s) but %d given", expected, given)
}

func (s *Sink) BadNewArrayLength(pos source.Position) {
	s.add(pos, BadNewArrayLength, "new array length must be an integer")
}

func (s *Sink) BadPrintArg(pos source.Position, index int, typ string) {
	s.add(pos, BadPrintArg, "incompatible argument %d: %s given, int/bool/string expected", index, typ)
}
