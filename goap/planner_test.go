package goap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/goapflow/types"
)

// mapDeterminer serves fixed determinations in planner tests.
type mapDeterminer map[string]types.Determination

func (m mapDeterminer) Determine(name string) types.Determination {
	if v, ok := m[name]; ok {
		return v
	}
	return types.Unknown
}

func (m mapDeterminer) WorldState(names []string) WorldState {
	ws := make(WorldState, len(names))
	for _, n := range names {
		ws[n] = m.Determine(n)
	}
	return ws
}

func TestPlanner_SingleActionPlan(t *testing.T) {
	t.Parallel()

	craft := NewAction("craft", EffectSpec{}, EffectSpec{"hasDraft": types.True})
	done := NewGoal("done", EffectSpec{"hasDraft": types.True})
	p := NewPlanner(mapDeterminer{})

	plan := p.PlanToGoal([]*Action{craft}, done)
	require.NotNil(t, plan)
	require.Len(t, plan.Actions(), 1)
	assert.Equal(t, "craft", plan.First().Name())
	assert.Equal(t, "craft -> goal:done", plan.String())
}

func TestPlanner_UnsatisfiablePreconditionYieldsNil(t *testing.T) {
	t.Parallel()

	craft := NewAction("craft",
		EffectSpec{"hasInput": types.True},
		EffectSpec{"hasDraft": types.True},
	)
	done := NewGoal("done", EffectSpec{"hasDraft": types.True})

	// No action provides hasInput and the determiner cannot establish it.
	p := NewPlanner(mapDeterminer{"hasInput": types.False})
	assert.Nil(t, p.PlanToGoal([]*Action{craft}, done))

	// Unknown is equally non-satisfying: no plan, not a false fire.
	p = NewPlanner(mapDeterminer{})
	assert.Nil(t, p.PlanToGoal([]*Action{craft}, done))
}

func TestPlanner_AlreadySatisfiedGoalYieldsEmptyPlan(t *testing.T) {
	t.Parallel()

	craft := NewAction("craft", EffectSpec{}, EffectSpec{"hasDraft": types.True}, WithCost(0.5))
	done := NewGoal("done", EffectSpec{"hasDraft": types.True})
	p := NewPlanner(mapDeterminer{"hasDraft": types.True})

	plan := p.PlanToGoal([]*Action{craft}, done)
	require.NotNil(t, plan)
	assert.True(t, plan.IsEmpty())
	assert.Nil(t, plan.First())
	assert.Zero(t, plan.Cost())
}

func TestPlanner_PrefersCheaperPath(t *testing.T) {
	t.Parallel()

	cheap := NewAction("cheapWay", EffectSpec{}, EffectSpec{"done": types.True}, WithCost(0.1))
	expensive := NewAction("expensiveWay", EffectSpec{}, EffectSpec{"done": types.True}, WithCost(0.9))
	goal := NewGoal("finish", EffectSpec{"done": types.True})

	sys := MustSystem([]*Action{cheap, expensive}, []*Goal{goal}, nil)
	p := NewPlanner(mapDeterminer{})

	plan := p.BestValuePlanToAnyGoal(sys)
	require.NotNil(t, plan)
	require.Len(t, plan.Actions(), 1)
	assert.Equal(t, "cheapWay", plan.First().Name())
	assert.InDelta(t, 0.1, plan.Cost(), 1e-9)
}

func TestPlanner_MultiStepChain(t *testing.T) {
	t.Parallel()

	gather := NewAction("gather", EffectSpec{}, EffectSpec{"hasInput": types.True}, WithCost(0.2))
	craft := NewAction("craft",
		EffectSpec{"hasInput": types.True},
		EffectSpec{"hasDraft": types.True},
		WithCost(0.3),
	)
	review := NewAction("review",
		EffectSpec{"hasDraft": types.True},
		EffectSpec{"reviewed": types.True},
		WithCost(0.1),
	)
	goal := NewGoal("shipped", EffectSpec{"reviewed": types.True})

	p := NewPlanner(mapDeterminer{})
	plan := p.PlanToGoal([]*Action{review, craft, gather}, goal)
	require.NotNil(t, plan)
	assert.Equal(t, "gather -> craft -> review -> goal:shipped", plan.String())
	assert.InDelta(t, 0.6, plan.Cost(), 1e-9)
}

func TestPlanner_DepthBound(t *testing.T) {
	t.Parallel()

	// A three-step chain cannot fit a depth bound of two.
	a1 := NewAction("s1", EffectSpec{}, EffectSpec{"c1": types.True})
	a2 := NewAction("s2", EffectSpec{"c1": types.True}, EffectSpec{"c2": types.True})
	a3 := NewAction("s3", EffectSpec{"c2": types.True}, EffectSpec{"c3": types.True})
	goal := NewGoal("g", EffectSpec{"c3": types.True})

	p := NewPlanner(mapDeterminer{}, WithMaxPlanDepth(2))
	assert.Nil(t, p.PlanToGoal([]*Action{a1, a2, a3}, goal))

	p = NewPlanner(mapDeterminer{}, WithMaxPlanDepth(3))
	assert.NotNil(t, p.PlanToGoal([]*Action{a1, a2, a3}, goal))
}

func TestPlanner_PlansToGoalsOrderedByNetValue(t *testing.T) {
	t.Parallel()

	a1 := NewAction("doCheap", EffectSpec{}, EffectSpec{"low": types.True}, WithCost(0.1))
	a2 := NewAction("doDear", EffectSpec{}, EffectSpec{"high": types.True}, WithCost(0.4))
	lowGoal := NewGoal("lowGoal", EffectSpec{"low": types.True}, WithGoalValue(0.3))
	highGoal := NewGoal("highGoal", EffectSpec{"high": types.True}, WithGoalValue(1))
	unreachable := NewGoal("never", EffectSpec{"impossible": types.True})

	sys := MustSystem([]*Action{a1, a2}, []*Goal{lowGoal, highGoal, unreachable}, nil)
	p := NewPlanner(mapDeterminer{})

	plans := p.PlansToGoals(sys)
	require.Len(t, plans, 2, "unreachable goals are discarded")
	// highGoal nets 1-0.4=0.6; lowGoal nets 0.3-0.1=0.2.
	assert.Equal(t, "highGoal", plans[0].Goal().Name())
	assert.Equal(t, "lowGoal", plans[1].Goal().Name())
}

func TestPlanner_GoalValueBeatsCheapPlan(t *testing.T) {
	t.Parallel()

	// The cheaper plan loses because its goal is worth much less.
	a1 := NewAction("quickFix", EffectSpec{}, EffectSpec{"patched": types.True}, WithCost(0.05))
	a2 := NewAction("rewrite", EffectSpec{}, EffectSpec{"rebuilt": types.True}, WithCost(0.5))
	patch := NewGoal("patch", EffectSpec{"patched": types.True}, WithGoalValue(0.1))
	rebuild := NewGoal("rebuild", EffectSpec{"rebuilt": types.True}, WithGoalValue(1))

	sys := MustSystem([]*Action{a1, a2}, []*Goal{patch, rebuild}, nil)
	plan := NewPlanner(mapDeterminer{}).BestValuePlanToAnyGoal(sys)
	require.NotNil(t, plan)
	assert.Equal(t, "rebuild", plan.Goal().Name())
}

func TestPlanner_PruneKeepsOnlyPlannedActions(t *testing.T) {
	t.Parallel()

	useful := NewAction("useful", EffectSpec{}, EffectSpec{"done": types.True}, WithCost(0.1))
	dead := NewAction("dead", EffectSpec{"neverTrue": types.True}, EffectSpec{"done": types.True})
	irrelevant := NewAction("irrelevant", EffectSpec{}, EffectSpec{"unrelated": types.True}, WithCost(0.9))
	goal := NewGoal("finish", EffectSpec{"done": types.True})

	sys := MustSystem([]*Action{useful, dead, irrelevant}, []*Goal{goal}, nil)
	pruned := NewPlanner(mapDeterminer{}).Prune(sys)

	names := make([]string, 0, len(pruned.Actions()))
	for _, a := range pruned.Actions() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"useful"}, names)
	assert.Len(t, pruned.Goals(), 1, "goals survive pruning")
}

func TestPlanner_PlanSatisfiesGoalWhenSimulated(t *testing.T) {
	t.Parallel()

	gather := NewAction("gather", EffectSpec{}, EffectSpec{"hasInput": types.True})
	craft := NewAction("craft", EffectSpec{"hasInput": types.True}, EffectSpec{"hasDraft": types.True})
	goal := NewGoal("done", EffectSpec{"hasDraft": types.True})

	p := NewPlanner(mapDeterminer{})
	plan := p.PlanToGoal([]*Action{gather, craft}, goal)
	require.NotNil(t, plan)

	ws := WorldState{}
	for _, a := range plan.Actions() {
		require.True(t, ws.Satisfies(a.Preconditions()),
			"each planned action must be applicable in sequence")
		ws = ws.Apply(a.Effects())
	}
	assert.True(t, goal.Satisfied(ws))
}

// Repeated planning over a fixed system and world state must return
// identical action sequences and net values.
func TestProperty_PlannerDeterminism(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		conds := []string{"c0", "c1", "c2", "c3"}
		n := rapid.IntRange(2, 6).Draw(t, "actions")
		actions := make([]*Action, 0, n)
		for i := range n {
			pre := EffectSpec{}
			if rapid.Bool().Draw(t, fmt.Sprintf("hasPre%d", i)) {
				pre[rapid.SampledFrom(conds).Draw(t, fmt.Sprintf("pre%d", i))] = types.True
			}
			effects := EffectSpec{
				rapid.SampledFrom(conds).Draw(t, fmt.Sprintf("eff%d", i)): types.True,
			}
			cost := float64(rapid.IntRange(1, 9).Draw(t, fmt.Sprintf("cost%d", i))) / 10
			actions = append(actions, NewAction(fmt.Sprintf("a%d", i), pre, effects, WithCost(cost)))
		}
		goal := NewGoal("g", EffectSpec{
			rapid.SampledFrom(conds).Draw(t, "goalCond"): types.True,
		})

		det := mapDeterminer{}
		for _, c := range conds {
			if rapid.Bool().Draw(t, "known_"+c) {
				det[c] = types.DeterminationOf(rapid.Bool().Draw(t, "value_"+c))
			}
		}
		p := NewPlanner(det)

		first := p.PlanToGoal(actions, goal)
		for range 3 {
			again := p.PlanToGoal(actions, goal)
			if first == nil {
				assert.Nil(t, again)
				continue
			}
			require.NotNil(t, again)
			assert.Equal(t, first.String(), again.String())
			assert.Equal(t, first.Cost(), again.Cost())
			ws := det.WorldState(conds)
			assert.Equal(t, first.NetValue(ws), again.NetValue(ws))
		}
	})
}
