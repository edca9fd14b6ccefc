package goap

// Goal is a target precondition set. A goal is satisfied when every
// precondition evaluates definitively True (or, for negated preconditions,
// definitively to the expected value) against the current world state.
type Goal struct {
	name  string
	pre   EffectSpec
	value CostFn
}

// GoalOption configures a Goal at construction.
type GoalOption func(*Goal)

// WithGoalValue sets a constant goal value in [0,1].
func WithGoalValue(value float64) GoalOption {
	return func(g *Goal) { g.value = func(WorldState) float64 { return value } }
}

// WithGoalValueFn sets a state-dependent goal value.
func WithGoalValueFn(fn CostFn) GoalOption {
	return func(g *Goal) { g.value = fn }
}

// NewGoal builds an immutable goal. Value defaults to 1.
func NewGoal(name string, pre EffectSpec, opts ...GoalOption) *Goal {
	g := &Goal{
		name:  name,
		pre:   pre.Clone(),
		value: func(WorldState) float64 { return 1 },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the goal name, unique within a planning system.
func (g *Goal) Name() string { return g.name }

// Preconditions returns a copy of the precondition spec.
func (g *Goal) Preconditions() EffectSpec { return g.pre.Clone() }

// Value returns the goal's worth against ws.
func (g *Goal) Value(ws WorldState) float64 { return g.value(ws) }

// Satisfied reports whether ws meets every precondition definitively.
// Unknown preconditions leave the goal unsatisfied; they are never
// conflated with False.
func (g *Goal) Satisfied(ws WorldState) bool {
	return ws.Satisfies(g.pre)
}

// KnownConditions returns the precondition names, sorted.
func (g *Goal) KnownConditions() []string {
	return g.pre.Keys()
}
