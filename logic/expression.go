package logic

import (
	"fmt"
	"strings"

	"github.com/BaSui01/goapflow/types"
)

// Lookup resolves a named atomic condition to its current truth value.
// Names the lookup does not know must map to types.Unknown.
type Lookup func(name string) types.Determination

// Expression is a three-valued boolean formula over named conditions.
type Expression interface {
	// Evaluate computes the Kleene truth value of the formula under lookup.
	Evaluate(lookup Lookup) types.Determination
	// String renders the formula in infix form.
	String() string
}

// Atom returns an expression referencing a single named condition.
func Atom(name string) Expression { return atom(name) }

// Not returns the Kleene negation of expr.
func Not(expr Expression) Expression { return notExpr{expr} }

// And returns the Kleene conjunction of exprs. And() is vacuously true.
func And(exprs ...Expression) Expression { return andExpr(exprs) }

// Or returns the Kleene disjunction of exprs. Or() is vacuously false.
func Or(exprs ...Expression) Expression { return orExpr(exprs) }

// Literal returns a constant expression.
func Literal(d types.Determination) Expression { return literal(d) }

type atom string

func (a atom) Evaluate(lookup Lookup) types.Determination {
	if lookup == nil {
		return types.Unknown
	}
	return lookup(string(a))
}

func (a atom) String() string { return string(a) }

type literal types.Determination

func (l literal) Evaluate(Lookup) types.Determination { return types.Determination(l) }

func (l literal) String() string { return types.Determination(l).String() }

type notExpr struct {
	inner Expression
}

func (n notExpr) Evaluate(lookup Lookup) types.Determination {
	return n.inner.Evaluate(lookup).Not()
}

func (n notExpr) String() string { return fmt.Sprintf("!(%s)", n.inner) }

type andExpr []Expression

func (a andExpr) Evaluate(lookup Lookup) types.Determination {
	result := types.True
	for _, e := range a {
		result = result.And(e.Evaluate(lookup))
		if result == types.False {
			return types.False
		}
	}
	return result
}

func (a andExpr) String() string { return joinInfix([]Expression(a), " && ") }

type orExpr []Expression

func (o orExpr) Evaluate(lookup Lookup) types.Determination {
	result := types.False
	for _, e := range o {
		result = result.Or(e.Evaluate(lookup))
		if result == types.True {
			return types.True
		}
	}
	return result
}

func (o orExpr) String() string { return joinInfix([]Expression(o), " || ") }

func joinInfix(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
