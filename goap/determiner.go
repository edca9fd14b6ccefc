package goap

import (
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/logic"
	"github.com/BaSui01/goapflow/types"
)

// Determiner grounds symbolic condition names in a live truth value.
type Determiner interface {
	// Determine resolves one condition name. Unknown or unparseable names
	// resolve to Unknown, never an error, so the planner can search
	// around them.
	Determine(name string) types.Determination
	// WorldState snapshots the given condition names.
	WorldState(names []string) WorldState
}

// BlackboardDeterminer derives condition truth from a blackboard:
//
//  1. an explicit condition fact set via SetCondition wins;
//  2. a dynamic Condition registered on the system is evaluated;
//  3. a "binding:Type" key or bare type name is resolved through the
//     board's HasValue algorithm (type-compatible matching and
//     aggregation-from-parts included);
//  4. a composite name such as "hasDraft && !approved" is parsed as a
//     boolean formula whose atoms resolve through the steps above;
//  5. anything else is Unknown.
type BlackboardDeterminer struct {
	bb         *blackboard.Blackboard
	dict       *blackboard.DataDictionary
	conditions map[string]*Condition
	names      *logic.NameParser
	formulas   *logic.FormulaParser
	logger     *zap.Logger
}

var _ Determiner = (*BlackboardDeterminer)(nil)

// NewBlackboardDeterminer creates a determiner over bb for the system's
// dynamic conditions. A nil dictionary and logger default to empty/nop.
func NewBlackboardDeterminer(bb *blackboard.Blackboard, dict *blackboard.DataDictionary, system *System, logger *zap.Logger) *BlackboardDeterminer {
	if dict == nil {
		dict = blackboard.NewDataDictionary()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	conditions := map[string]*Condition{}
	if system != nil {
		for _, c := range system.Conditions() {
			conditions[c.Name()] = c
		}
	}
	return &BlackboardDeterminer{
		bb:         bb,
		dict:       dict,
		conditions: conditions,
		names:      logic.NewNameParser(),
		formulas:   logic.NewFormulaParser(),
		logger:     logger.With(zap.String("component", "world_state")),
	}
}

// Determine implements Determiner.
func (d *BlackboardDeterminer) Determine(name string) types.Determination {
	if v, ok := d.bb.GetCondition(name); ok {
		return types.DeterminationOf(v)
	}
	if c := d.conditions[name]; c != nil {
		return c.Eval(d.bb)
	}
	if binding, typeName, ok := SplitConditionKey(name); ok {
		return types.DeterminationOf(d.bb.HasValue(binding, typeName, d.dict))
	}
	// A bare name may still be a type name: definitive when the
	// dictionary knows it, satisfied-only when an object happens to
	// match by runtime name, Unknown otherwise.
	if d.dict.Lookup(name) != nil {
		return types.DeterminationOf(d.bb.HasValue(blackboard.DefaultBinding, name, d.dict))
	}
	if d.bb.HasValue(blackboard.DefaultBinding, name, d.dict) {
		return types.True
	}
	// A name that is not a bare condition name may be a boolean formula
	// over other conditions. Formula atoms are always bare names, so the
	// recursion bottoms out after one level.
	if d.names.Parse(name) == nil {
		if expr := d.formulas.Parse(name); expr != nil {
			return expr.Evaluate(d.Determine)
		}
	}
	return types.Unknown
}

// WorldState implements Determiner.
func (d *BlackboardDeterminer) WorldState(names []string) WorldState {
	ws := make(WorldState, len(names))
	for _, name := range names {
		ws[name] = d.Determine(name)
	}
	d.logger.Debug("determined world state", zap.Int("conditions", len(names)))
	return ws
}

// SplitConditionKey splits a "binding:Type" condition key. The convention
// is load-bearing: keys with exactly one ':' and non-empty halves resolve
// through the blackboard; everything else falls through to the remaining
// determination steps.
func SplitConditionKey(key string) (binding, typeName string, ok bool) {
	i := strings.Index(key, ":")
	if i <= 0 || i == len(key)-1 || strings.Contains(key[i+1:], ":") {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// IsFormulaKey reports whether key is a boolean formula over other
// condition names rather than a bare name. Formula-keyed effects are
// never asserted as explicit facts; their truth follows their atoms.
func IsFormulaKey(key string) bool {
	if logic.NewNameParser().Parse(key) != nil {
		return false
	}
	return logic.NewFormulaParser().Parse(key) != nil
}
