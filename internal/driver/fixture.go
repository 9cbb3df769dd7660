package driver

import (
	"github.com/corvid-lang/sema/internal/ast"
	"github.com/corvid-lang/sema/internal/source"
)

// The fixture format is a direct, hand-writable YAML encoding of
// internal/ast's node shapes. Every polymorphic slot (a type node, a
// statement, an expression) is a mapping with a `kind` discriminator plus
// whatever fields that kind needs; unused fields are simply omitted in a
// given document. This package only ever decodes fixtures — nothing in the
// checked passes themselves knows this format exists.

type fixturePos struct {
	Line   int    `yaml:"line"`
	Col    int    `yaml:"col"`
	File   string `yaml:"file"`
}

func (p fixturePos) toSource() source.Position {
	return source.Position{Line: p.Line, Column: p.Col, File: p.File}
}

type fixtureProgram struct {
	Classes []fixtureClass `yaml:"classes"`
}

type fixtureClass struct {
	Pos        fixturePos      `yaml:"pos"`
	Name       string          `yaml:"name"`
	Parent     string          `yaml:"parent"`
	Abstract   bool            `yaml:"abstract"`
	Fields     []fixtureField  `yaml:"fields"`
	Methods    []fixtureMethod `yaml:"methods"`
}

type fixtureField struct {
	Pos  fixturePos  `yaml:"pos"`
	Name string      `yaml:"name"`
	Type fixtureType `yaml:"type"`
}

type fixtureParam struct {
	Pos  fixturePos   `yaml:"pos"`
	Name string       `yaml:"name"`
	Type *fixtureType `yaml:"type"`
}

type fixtureMethod struct {
	Pos      fixturePos     `yaml:"pos"`
	Name     string         `yaml:"name"`
	Static   bool           `yaml:"static"`
	Abstract bool           `yaml:"abstract"`
	Params   []fixtureParam `yaml:"params"`
	Ret      fixtureType    `yaml:"ret"`
	Body     *fixtureStmt   `yaml:"body"`
}

// fixtureType is a `kind`-tagged type annotation: "ident" (name),
// "array" (elem), or "fun" (ret, params).
type fixtureType struct {
	Kind   string        `yaml:"kind"`
	Name   string        `yaml:"name"`
	Elem   *fixtureType  `yaml:"elem"`
	Ret    *fixtureType  `yaml:"ret"`
	Params []fixtureType `yaml:"params"`
}

func (t *fixtureType) toAST() ast.TypeNode {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case "array":
		return &ast.TypeArray{Elem: t.Elem.toAST()}
	case "fun":
		params := make([]ast.TypeNode, len(t.Params))
		for i := range t.Params {
			params[i] = t.Params[i].toAST()
		}
		return &ast.TypeFunLit{Ret: t.Ret.toAST(), Params: params}
	default: // "ident", or unset
		return &ast.TypeIdent{Name: t.Name}
	}
}

// fixtureStmt is a `kind`-tagged statement: "block", "localvar", "assign",
// "expr", "if", "while", "for", "break", "return", "print".
type fixtureStmt struct {
	Pos  fixturePos `yaml:"pos"`
	Kind string     `yaml:"kind"`

	Stmts []fixtureStmt `yaml:"stmts"` // block

	Name  string       `yaml:"name"`  // localvar
	Type  *fixtureType `yaml:"type"`  // localvar
	IsVar bool         `yaml:"var"`   // localvar
	Init  *fixtureExpr `yaml:"init"`  // localvar

	LHS *fixtureExpr `yaml:"lhs"` // assign
	RHS *fixtureExpr `yaml:"rhs"` // assign

	Expr *fixtureExpr `yaml:"expr"` // expr, return

	Cond *fixtureExpr `yaml:"cond"` // if, while, for
	Then *fixtureStmt `yaml:"then"` // if
	Else *fixtureStmt `yaml:"else"` // if

	Body *fixtureStmt `yaml:"body"` // while, for

	ForInit *fixtureStmt `yaml:"for_init"` // for
	Update  *fixtureStmt `yaml:"update"`   // for

	Args []fixtureExpr `yaml:"args"` // print
}

func (s *fixtureStmt) toAST() ast.Statement {
	if s == nil {
		return nil
	}
	pos := s.Pos.toSource()
	var out ast.Statement
	switch s.Kind {
	case "block":
		stmts := make([]ast.Statement, len(s.Stmts))
		for i := range s.Stmts {
			stmts[i] = s.Stmts[i].toAST()
		}
		out = &ast.Block{Stmts: stmts}
	case "localvar":
		out = &ast.LocalVarDef{Name: s.Name, Type: s.Type.toAST(), IsVar: s.IsVar, Init: s.Init.toAST()}
	case "assign":
		out = &ast.AssignStmt{LHS: s.LHS.toAST(), RHS: s.RHS.toAST()}
	case "expr":
		out = &ast.ExprStmt{Expr: s.Expr.toAST()}
	case "if":
		out = &ast.IfStmt{Cond: s.Cond.toAST(), Then: s.Then.toAST(), Else: s.Else.toAST()}
	case "while":
		out = &ast.WhileStmt{Cond: s.Cond.toAST(), Body: s.Body.toAST()}
	case "for":
		out = &ast.ForStmt{Init: s.ForInit.toAST(), Cond: s.Cond.toAST(), Update: s.Update.toAST(), Body: s.Body.toAST()}
	case "break":
		out = &ast.BreakStmt{}
	case "return":
		out = &ast.ReturnStmt{Expr: s.Expr.toAST()}
	case "print":
		args := make([]ast.Expression, len(s.Args))
		for i := range s.Args {
			args[i] = s.Args[i].toAST()
		}
		out = &ast.PrintStmt{Args: args}
	default:
		out = &ast.Block{}
	}
	out.SetPos(pos)
	return out
}

// fixtureExpr is a `kind`-tagged expression: "int", "bool", "string",
// "null", "readint", "readline", "this", "unary", "binary", "var", "new",
// "newarray", "index", "call", "instanceof", "cast", "lambda".
type fixtureExpr struct {
	Pos  fixturePos `yaml:"pos"`
	Kind string     `yaml:"kind"`

	IntVal    int64  `yaml:"int"`
	BoolVal   bool   `yaml:"bool"`
	StringVal string `yaml:"string"`

	Op string `yaml:"op"` // unary, binary

	Operand *fixtureExpr `yaml:"operand"` // unary, instanceof, cast
	LHS     *fixtureExpr `yaml:"lhs"`     // binary
	RHS     *fixtureExpr `yaml:"rhs"`     // binary

	Receiver *fixtureExpr `yaml:"receiver"` // var, call
	Name     string       `yaml:"name"`     // var, new, call, instanceof, cast

	ElemType *fixtureType `yaml:"elemtype"` // newarray
	Length   *fixtureExpr `yaml:"length"`   // newarray

	Array *fixtureExpr `yaml:"array"` // index
	Index *fixtureExpr `yaml:"index"` // index

	Args          []fixtureExpr `yaml:"args"`          // call
	IsArrayLength bool          `yaml:"is_array_length"` // call

	Params []fixtureParam `yaml:"params"` // lambda
	Body   *fixtureStmt   `yaml:"lambda_body"` // lambda, block form
	Expr   *fixtureExpr   `yaml:"lambda_expr"` // lambda, expression form
}

var unaryOps = map[string]ast.UnaryOp{"-": ast.UnaryNeg, "!": ast.UnaryNot}

var binaryOps = map[string]ast.BinaryOp{
	"+": ast.BinAdd, "-": ast.BinSub, "*": ast.BinMul, "/": ast.BinDiv, "%": ast.BinMod,
	"<": ast.BinLt, "<=": ast.BinLe, ">": ast.BinGt, ">=": ast.BinGe,
	"==": ast.BinEq, "!=": ast.BinNe, "&&": ast.BinAnd, "||": ast.BinOr,
}

func (e *fixtureExpr) toAST() ast.Expression {
	if e == nil {
		return nil
	}
	pos := e.Pos.toSource()
	var out ast.Expression
	switch e.Kind {
	case "int":
		out = &ast.IntLit{Value: e.IntVal}
	case "bool":
		out = &ast.BoolLit{Value: e.BoolVal}
	case "string":
		out = &ast.StringLit{Value: e.StringVal}
	case "null":
		out = &ast.NullLit{}
	case "readint":
		out = &ast.ReadIntExpr{}
	case "readline":
		out = &ast.ReadLineExpr{}
	case "this":
		out = &ast.ThisExpr{}
	case "unary":
		out = &ast.UnaryExpr{Op: unaryOps[e.Op], Operand: e.Operand.toAST()}
	case "binary":
		out = &ast.BinaryExpr{Op: binaryOps[e.Op], LHS: e.LHS.toAST(), RHS: e.RHS.toAST()}
	case "var":
		out = &ast.VarSel{Receiver: e.Receiver.toAST(), Name: e.Name}
	case "new":
		out = &ast.NewClassExpr{ClassName: e.Name}
	case "newarray":
		out = &ast.NewArrayExpr{ElemType: e.ElemType.toAST(), Length: e.Length.toAST()}
	case "index":
		out = &ast.IndexSelExpr{Array: e.Array.toAST(), Index: e.Index.toAST()}
	case "call":
		args := make([]ast.Expression, len(e.Args))
		for i := range e.Args {
			args[i] = e.Args[i].toAST()
		}
		out = &ast.CallExpr{Receiver: e.Receiver.toAST(), Name: e.Name, Args: args, IsArrayLength: e.IsArrayLength}
	case "instanceof":
		out = &ast.ClassTestExpr{Operand: e.Operand.toAST(), ClassName: e.Name}
	case "cast":
		out = &ast.ClassCastExpr{Operand: e.Operand.toAST(), ClassName: e.Name}
	case "lambda":
		params := make([]*ast.Param, len(e.Params))
		for i, p := range e.Params {
			params[i] = &ast.Param{Pos_: p.Pos.toSource(), Name: p.Name, Type: p.Type.toAST()}
		}
		le := &ast.LambdaExpr{Params: params}
		if e.Body != nil {
			le.Body = e.Body.toAST().(*ast.Block)
		} else {
			le.ExprBody = e.Expr.toAST()
		}
		out = le
	default:
		out = &ast.NullLit{}
	}
	out.SetPos(pos)
	return out
}

func (p fixtureProgram) toAST() *ast.Program {
	classes := make([]*ast.ClassDef, len(p.Classes))
	for i, c := range p.Classes {
		fields := make([]*ast.FieldDef, len(c.Fields))
		for j, f := range c.Fields {
			fields[j] = &ast.FieldDef{Pos_: f.Pos.toSource(), Name: f.Name, Type: f.Type.toAST()}
		}
		methods := make([]*ast.MethodDef, len(c.Methods))
		for j, m := range c.Methods {
			params := make([]*ast.Param, len(m.Params))
			for k, p := range m.Params {
				params[k] = &ast.Param{Pos_: p.Pos.toSource(), Name: p.Name, Type: p.Type.toAST()}
			}
			var body *ast.Block
			if m.Body != nil {
				body = m.Body.toAST().(*ast.Block)
			}
			methods[j] = &ast.MethodDef{
				Pos_: m.Pos.toSource(), Name: m.Name, IsStatic: m.Static, IsAbstract: m.Abstract,
				Params: params, RetType: m.Ret.toAST(), Body: body,
			}
		}
		classes[i] = &ast.ClassDef{
			Pos_: c.Pos.toSource(), Name: c.Name, ParentName: c.Parent, IsAbstract: c.Abstract,
			Fields: fields, Methods: methods,
		}
	}
	return &ast.Program{Classes: classes}
}
