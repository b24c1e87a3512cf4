package builder

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// IndexerName prefixes the name of every index segment, so that x.Lines[0]
// and x.Lines[1] become the distinct children "Item[0]" and "Item[1]".
const IndexerName = "Item"

// SegmentKind distinguishes member access from index access.
type SegmentKind uint8

const (
	// MemberSegment is a field selection such as .Address.
	MemberSegment SegmentKind = iota + 1

	// IndexSegment is an index or key access such as [0] or ["env"].
	IndexSegment
)

// PathSegment is one hop of a path expression.
type PathSegment struct {
	// Name is unique among the children of one tree node: the field name for
	// members, IndexerName plus the bracketed canonical argument for indexers.
	Name string

	Kind SegmentKind

	// Args holds the decoded index argument (int64, float64, string, rune
	// or bool). Empty for members.
	Args []any

	// argText is the canonical bracket content, e.g. `"env"` or `16` for 0x10.
	argText string
}

// Decompose parses a path expression such as `x.Customer.Address.City` or
// `o.Lines[2].Qty` and returns its segments ordered from the root to the leaf.
//
// The leading identifier names the root parameter and is not part of the
// result. Only selectors and index expressions with literal arguments are
// accepted; anything else yields an UnsupportedExpressionError.
func Decompose(expr string) ([]PathSegment, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, InvalidPathError{Expr: expr, Reason: "syntax error", Cause: err}
	}

	// The syntax tree is outermost-first; collect on a stack and pop in reverse.
	var stack []PathSegment
	for {
		switch n := node.(type) {
		case *ast.Ident:
			if len(stack) == 0 {
				return nil, InvalidPathError{Expr: expr, Reason: "no member access after root " + strconv.Quote(n.Name)}
			}
			segments := make([]PathSegment, 0, len(stack))
			for i := len(stack) - 1; i >= 0; i-- {
				segments = append(segments, stack[i])
			}
			return segments, nil

		case *ast.SelectorExpr:
			stack = append(stack, PathSegment{Name: n.Sel.Name, Kind: MemberSegment})
			node = n.X

		case *ast.IndexExpr:
			seg, err := indexSegment(expr, n.Index)
			if err != nil {
				return nil, err
			}
			stack = append(stack, seg)
			node = n.X

		default:
			return nil, UnsupportedExpressionError{Node: astKind(node), Expr: expr}
		}
	}
}

func indexSegment(expr string, index ast.Expr) (PathSegment, error) {
	val, err := literalArg(expr, index)
	if err != nil {
		return PathSegment{}, err
	}
	argText := canonicalArg(val)
	return PathSegment{
		Name:    IndexerName + "[" + argText + "]",
		Kind:    IndexSegment,
		Args:    []any{val},
		argText: argText,
	}, nil
}

// canonicalArg renders a decoded index argument so that equal keys written
// differently (1 and 0x1, "k" and `k`) name the same node.
func canonicalArg(val any) string {
	switch v := val.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case rune:
		return strconv.QuoteRune(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(val)
}

// literalArg decodes an index argument. Only basic literals, negated
// numeric literals and the identifiers true/false are accepted.
func literalArg(expr string, node ast.Expr) (any, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		val, err := basicLitValue(n)
		if err != nil {
			return nil, InvalidPathError{Expr: expr, Reason: "bad index literal " + n.Value, Cause: err}
		}
		return val, nil

	case *ast.UnaryExpr:
		lit, ok := n.X.(*ast.BasicLit)
		if !ok || n.Op != token.SUB || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
			return nil, UnsupportedExpressionError{Node: astKind(n), Expr: expr}
		}
		val, err := basicLitValue(lit)
		if err != nil {
			return nil, InvalidPathError{Expr: expr, Reason: "bad index literal " + lit.Value, Cause: err}
		}
		switch v := val.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}

	case *ast.Ident:
		switch n.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, UnsupportedExpressionError{Node: astKind(node), Expr: expr}
}

func basicLitValue(lit *ast.BasicLit) (any, error) {
	switch lit.Kind {
	case token.INT:
		return strconv.ParseInt(lit.Value, 0, 64)
	case token.FLOAT:
		return strconv.ParseFloat(lit.Value, 64)
	case token.STRING:
		return strconv.Unquote(lit.Value)
	case token.CHAR:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, err
		}
		return []rune(s)[0], nil
	}
	return nil, strconv.ErrSyntax
}

// astKind names an ast node without the package prefix, e.g. "CallExpr".
func astKind(node ast.Node) string {
	t := reflect.TypeOf(node)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// formatPath renders segments as a dotted path without the root identifier,
// e.g. "Lines[0].Qty".
func formatPath(segments []PathSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case IndexSegment:
			b.WriteByte('[')
			b.WriteString(seg.argText)
			b.WriteByte(']')
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Name)
		}
	}
	return b.String()
}
