package goap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/types"
)

// Names of the synthetic elements injected into utility systems. The
// terminal goal gives the executor a well-defined stopping signal when no
// action scores usefully.
// The condition name deliberately avoids ':' so it never parses as a
// "binding:Type" key and the executor can assert it as an explicit fact.
const (
	UtilityDoneCondition = "utility_done"
	UtilityIdleAction    = "utility:idle"
	UtilityGoalName      = "utility:complete"
)

// NewUtilitySystem assembles a goal-less system for utility planning:
// the caller's actions plus a synthetic always-available idle action and a
// terminal goal it satisfies. Caller action names must not collide with
// the synthetic names.
func NewUtilitySystem(actions []*Action, conditions []*Condition) (*System, error) {
	idle := NewAction(UtilityIdleAction,
		EffectSpec{},
		EffectSpec{UtilityDoneCondition: types.True},
	)
	done := NewGoal(UtilityGoalName,
		EffectSpec{UtilityDoneCondition: types.True},
		WithGoalValue(0),
	)
	return NewSystem(append([]*Action{idle}, actions...), []*Goal{done}, conditions)
}

// UtilityPlanner ranks candidate next actions by utility instead of
// searching for a goal-reaching sequence: each step it selects the single
// best-scoring runnable action, where score = value(state) - cost(state).
// When no action scores above zero it plans the synthetic idle action,
// which flips the terminal condition and lets the executor complete.
type UtilityPlanner struct {
	determiner Determiner
	logger     *zap.Logger
}

// NewUtilityPlanner creates a utility planner over the determiner.
func NewUtilityPlanner(determiner Determiner, logger *zap.Logger) *UtilityPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilityPlanner{
		determiner: determiner,
		logger:     logger.With(zap.String("component", "utility_planner")),
	}
}

// WorldState snapshots the current determinable state for the system.
func (p *UtilityPlanner) WorldState(system *System) WorldState {
	return p.determiner.WorldState(system.KnownConditions())
}

// SelectAction returns the best-scoring runnable action against ws, or nil
// when nothing scores above zero. Ties break by action name.
func (p *UtilityPlanner) SelectAction(system *System, ws WorldState) *Action {
	var best *Action
	var bestScore float64
	candidates := system.Actions()
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name() < candidates[j].Name() })
	for _, a := range candidates {
		if a.Name() == UtilityIdleAction || !a.applicable(ws) {
			continue
		}
		score := a.Value(ws) - a.Cost(ws)
		if score <= 0 {
			continue
		}
		if best == nil || score > bestScore {
			best, bestScore = a, score
		}
	}
	if best != nil {
		p.logger.Debug("selected utility action",
			zap.String("action", best.Name()),
			zap.Float64("score", bestScore),
		)
	}
	return best
}

// BestValuePlanToAnyGoal returns a single-action plan: the best-scoring
// runnable action, or the synthetic idle action when nothing is worth
// running. Returns nil only for systems missing the synthetic elements.
func (p *UtilityPlanner) BestValuePlanToAnyGoal(system *System) *Plan {
	goal := system.Goal(UtilityGoalName)
	if goal == nil {
		return nil
	}
	ws := p.WorldState(system)
	if goal.Satisfied(ws) {
		return &Plan{goal: goal}
	}
	if a := p.SelectAction(system, ws); a != nil {
		return &Plan{actions: []*Action{a}, goal: goal, cost: a.Cost(ws)}
	}
	idle := system.Action(UtilityIdleAction)
	if idle == nil {
		return nil
	}
	return &Plan{actions: []*Action{idle}, goal: goal}
}
