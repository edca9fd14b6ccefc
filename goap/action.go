package goap

import (
	"context"
	"sort"

	"github.com/BaSui01/goapflow/blackboard"
)

// CostFn scores an action or goal against a world state, in [0,1].
type CostFn func(ws WorldState) float64

// RunFunc is an action body. The planner never invokes it; the executor
// does, and errors propagate to the executor unchanged.
type RunFunc func(ctx context.Context, bb *blackboard.Blackboard) error

// Action is a state transition: it may fire when its preconditions hold
// and asserts its effects afterwards. Actions are immutable once built and
// carry no execution state; all state lives on the blackboard.
type Action struct {
	name    string
	pre     EffectSpec
	effects EffectSpec
	cost    CostFn
	value   CostFn
	run     RunFunc
}

// ActionOption configures an Action at construction.
type ActionOption func(*Action)

// WithCost sets a constant cost in [0,1].
func WithCost(cost float64) ActionOption {
	return func(a *Action) { a.cost = func(WorldState) float64 { return cost } }
}

// WithCostFn sets a state-dependent cost.
func WithCostFn(fn CostFn) ActionOption {
	return func(a *Action) { a.cost = fn }
}

// WithValue sets a constant value in [0,1].
func WithValue(value float64) ActionOption {
	return func(a *Action) { a.value = func(WorldState) float64 { return value } }
}

// WithValueFn sets a state-dependent value.
func WithValueFn(fn CostFn) ActionOption {
	return func(a *Action) { a.value = fn }
}

// WithRun sets the action body invoked by the executor.
func WithRun(run RunFunc) ActionOption {
	return func(a *Action) { a.run = run }
}

// NewAction builds an immutable action. Cost and value default to zero.
func NewAction(name string, pre, effects EffectSpec, opts ...ActionOption) *Action {
	a := &Action{
		name:    name,
		pre:     pre.Clone(),
		effects: effects.Clone(),
		cost:    zeroScore,
		value:   zeroScore,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func zeroScore(WorldState) float64 { return 0 }

// Name returns the action name, unique within a planning system.
func (a *Action) Name() string { return a.name }

// Preconditions returns a copy of the precondition spec.
func (a *Action) Preconditions() EffectSpec { return a.pre.Clone() }

// Effects returns a copy of the effect spec.
func (a *Action) Effects() EffectSpec { return a.effects.Clone() }

// Cost returns the firing cost against ws.
func (a *Action) Cost(ws WorldState) float64 { return a.cost(ws) }

// Value returns the inherent value against ws.
func (a *Action) Value(ws WorldState) float64 { return a.value(ws) }

// HasRun reports whether an action body was provided.
func (a *Action) HasRun() bool { return a.run != nil }

// Run invokes the action body. Actions without a body are no-ops: their
// contribution is entirely in their asserted effects.
func (a *Action) Run(ctx context.Context, bb *blackboard.Blackboard) error {
	if a.run == nil {
		return nil
	}
	return a.run(ctx, bb)
}

// KnownConditions returns the union of precondition and effect names,
// sorted.
func (a *Action) KnownConditions() []string {
	seen := map[string]struct{}{}
	for k := range a.pre {
		seen[k] = struct{}{}
	}
	for k := range a.effects {
		seen[k] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// applicable reports whether every precondition holds in ws.
func (a *Action) applicable(ws WorldState) bool {
	return ws.Satisfies(a.pre)
}
