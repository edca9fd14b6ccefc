package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/types"
)

func TestEffectSpec_KeysSortedAndClone(t *testing.T) {
	t.Parallel()

	spec := EffectSpec{"b": types.True, "a": types.False}
	assert.Equal(t, []string{"a", "b"}, spec.Keys())

	clone := spec.Clone()
	clone["c"] = types.True
	assert.NotContains(t, spec, "c")
	assert.Equal(t, "{a=FALSE, b=TRUE}", spec.String())
}

func TestNewSystem_RejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	a1 := NewAction("craft", EffectSpec{}, EffectSpec{"hasDraft": types.True})
	a2 := NewAction("craft", EffectSpec{}, EffectSpec{"other": types.True})

	_, err := NewSystem([]*Action{a1, a2}, nil, nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrDuplicateName))
}

func TestNewSystem_RejectsCrossKindCollisions(t *testing.T) {
	t.Parallel()

	a := NewAction("done", EffectSpec{}, EffectSpec{})
	g := NewGoal("done", EffectSpec{})

	_, err := NewSystem([]*Action{a}, []*Goal{g}, nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrDuplicateName))
}

func TestNewSystem_RejectsEmptyNames(t *testing.T) {
	t.Parallel()

	_, err := NewSystem(nil, []*Goal{NewGoal("", EffectSpec{})}, nil)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrEmptyName))
}

func TestSystem_KnownConditions(t *testing.T) {
	t.Parallel()

	craft := NewAction("craft",
		EffectSpec{"hasInput": types.True},
		EffectSpec{"hasDraft": types.True},
	)
	done := NewGoal("done", EffectSpec{"reviewed": types.True})
	dyn := BoolCondition("reviewed", func(*blackboard.Blackboard) bool { return false })

	sys, err := NewSystem([]*Action{craft}, []*Goal{done}, []*Condition{dyn})
	require.NoError(t, err)
	assert.Equal(t, []string{"hasDraft", "hasInput", "reviewed"}, sys.KnownConditions())
}

func TestAction_KnownConditionsAndImmutability(t *testing.T) {
	t.Parallel()

	pre := EffectSpec{"a": types.True}
	a := NewAction("act", pre, EffectSpec{"b": types.True}, WithCost(0.3))
	pre["mutated"] = types.True

	assert.Equal(t, []string{"a", "b"}, a.KnownConditions())
	assert.NotContains(t, a.Preconditions(), "mutated", "construction must copy the specs")

	got := a.Effects()
	got["later"] = types.True
	assert.NotContains(t, a.Effects(), "later", "accessors must return copies")
	assert.Equal(t, 0.3, a.Cost(WorldState{}))
}

func TestWorldState_SatisfiesNeverTreatsUnknownAsFalse(t *testing.T) {
	t.Parallel()

	ws := WorldState{"known": types.False}
	assert.False(t, ws.Satisfies(EffectSpec{"absent": types.True}))
	assert.False(t, ws.Satisfies(EffectSpec{"absent": types.False}),
		"Unknown must not satisfy an expected False")
	assert.True(t, ws.Satisfies(EffectSpec{"known": types.False}))
	assert.True(t, ws.Satisfies(EffectSpec{}))
}

func TestWorldState_ApplyIsPersistent(t *testing.T) {
	t.Parallel()

	base := WorldState{"a": types.False}
	next := base.Apply(EffectSpec{"a": types.True, "b": types.True})

	assert.Equal(t, types.False, base.Get("a"), "Apply must not mutate the receiver")
	assert.Equal(t, types.True, next.Get("a"))
	assert.Equal(t, types.True, next.Get("b"))
	assert.Equal(t, types.Unknown, next.Get("absent"))
}
