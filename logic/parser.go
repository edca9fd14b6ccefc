package logic

import (
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/BaSui01/goapflow/types"
)

// Parser turns a string into an Expression. Parse returns nil when the
// input is not in this parser's recognized syntax; callers try the next
// parser in the chain or treat the condition as unknown.
type Parser interface {
	Parse(expression string) Expression
}

// Of combines parsers into a chain that tries each in declaration order and
// returns the first non-nil result.
func Of(parsers ...Parser) Parser {
	return chain(parsers)
}

// Default returns the standard parser chain: boolean formulas first, then
// bare condition names (which may contain characters formulas cannot, such
// as the ':' of "binding:Type" keys).
func Default() Parser {
	return Of(NewFormulaParser(), NewNameParser())
}

type chain []Parser

func (c chain) Parse(expression string) Expression {
	for _, p := range c {
		if expr := p.Parse(expression); expr != nil {
			return expr
		}
	}
	return nil
}

// NameParser recognizes a single bare condition name: an atom with no
// boolean structure. Names may contain letters, digits, '_', '-', '.',
// and the ':' separating a binding from its type.
type NameParser struct{}

// NewNameParser creates a bare-name parser.
func NewNameParser() *NameParser { return &NameParser{} }

func (p *NameParser) Parse(expression string) Expression {
	name := strings.TrimSpace(expression)
	if name == "" {
		return nil
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == ':':
		default:
			return nil
		}
	}
	return Atom(name)
}

// FormulaParser recognizes boolean formulas over condition names using
// expr-lang syntax: `a && (b || !c)`, with `and`/`or`/`not` accepted as
// operator spellings. Only boolean structure is recognized; any formula
// using comparisons, literals other than true/false, or function calls is
// outside this parser's syntax and yields nil.
//
// expr-lang's own evaluator is two-valued, so only its parser is used here;
// evaluation happens on this package's Kleene expressions.
type FormulaParser struct{}

// NewFormulaParser creates an expr-lang-backed formula parser.
func NewFormulaParser() *FormulaParser { return &FormulaParser{} }

func (p *FormulaParser) Parse(expression string) Expression {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil
	}
	return fromNode(tree.Node)
}

// fromNode converts an expr-lang AST node into a Kleene expression,
// returning nil for any node outside the boolean fragment.
func fromNode(node ast.Node) Expression {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return Atom(n.Value)
	case *ast.BoolNode:
		if n.Value {
			return Literal(types.True)
		}
		return Literal(types.False)
	case *ast.MemberNode:
		if name := flattenMember(n); name != "" {
			return Atom(name)
		}
		return nil
	case *ast.UnaryNode:
		if n.Operator != "!" && n.Operator != "not" {
			return nil
		}
		inner := fromNode(n.Node)
		if inner == nil {
			return nil
		}
		return Not(inner)
	case *ast.BinaryNode:
		left := fromNode(n.Left)
		right := fromNode(n.Right)
		if left == nil || right == nil {
			return nil
		}
		switch n.Operator {
		case "&&", "and":
			return And(left, right)
		case "||", "or":
			return Or(left, right)
		default:
			return nil
		}
	default:
		return nil
	}
}

// flattenMember renders `a.b.c` member chains back into a dotted condition
// name. Returns "" for computed or optional member access.
func flattenMember(n *ast.MemberNode) string {
	prop, ok := n.Property.(*ast.StringNode)
	if !ok || n.Optional {
		return ""
	}
	switch base := n.Node.(type) {
	case *ast.IdentifierNode:
		return base.Value + "." + prop.Value
	case *ast.MemberNode:
		if prefix := flattenMember(base); prefix != "" {
			return prefix + "." + prop.Value
		}
	}
	return ""
}
