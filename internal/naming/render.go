package naming

import (
	"strings"

	"github.com/corvid-lang/sema/internal/ast"
)

// renderFunLit renders a function-type literal's syntax exactly as written,
// independent of whether its component types resolve — this text is what
// two TFun literals compare by before their classes are known.
func renderFunLit(t *ast.TypeFunLit) string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = renderTypeNode(p)
	}
	return renderTypeNode(t.Ret) + "(" + strings.Join(parts, ", ") + ")"
}

func renderTypeNode(node ast.TypeNode) string {
	switch t := node.(type) {
	case *ast.TypeIdent:
		return t.Name
	case *ast.TypeArray:
		return renderTypeNode(t.Elem) + "[]"
	case *ast.TypeFunLit:
		return renderFunLit(t)
	default:
		return "?"
	}
}
