package goap

import (
	"sort"
	"strings"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/types"
)

// EffectSpec maps condition names to expected determinations. It describes
// action preconditions and effects as well as goal preconditions. Keys are
// free-form, but by convention encode a binding and/or type name, e.g.
// "lastResult:com.example.Report" or a bare type simple name.
type EffectSpec map[string]types.Determination

// Keys returns the condition names in sorted order.
func (s EffectSpec) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (s EffectSpec) Clone() EffectSpec {
	out := make(EffectSpec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s EffectSpec) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.Keys() {
		parts = append(parts, k+"="+s[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvalFunc computes a condition's current truth value from the blackboard.
type EvalFunc func(bb *blackboard.Blackboard) types.Determination

// Condition is a named boolean fact with an optional dynamic evaluation.
// Conditions with an Eval function are recomputed from the blackboard on
// every world-state determination; conditions without one are grounded via
// explicit blackboard facts or the binding:Type naming convention.
type Condition struct {
	name string
	cost float64
	eval EvalFunc
}

// NewCondition creates a dynamically evaluated condition.
func NewCondition(name string, eval EvalFunc) *Condition {
	return &Condition{name: name, eval: eval}
}

// Name returns the condition name.
func (c *Condition) Name() string { return c.name }

// Cost returns the evaluation cost hint in [0,1].
func (c *Condition) Cost() float64 { return c.cost }

// Eval computes the current truth value, Unknown when no evaluation
// function was registered.
func (c *Condition) Eval(bb *blackboard.Blackboard) types.Determination {
	if c.eval == nil {
		return types.Unknown
	}
	return c.eval(bb)
}

// BoolCondition adapts a plain predicate into a condition: the predicate's
// result is always definitive, never Unknown.
func BoolCondition(name string, pred func(bb *blackboard.Blackboard) bool) *Condition {
	return NewCondition(name, func(bb *blackboard.Blackboard) types.Determination {
		return types.DeterminationOf(pred(bb))
	})
}
