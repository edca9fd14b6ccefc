package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/types"
)

type draft struct{ Text string }

func TestSplitConditionKey(t *testing.T) {
	t.Parallel()

	binding, typeName, ok := SplitConditionKey("lastResult:com.example.Report")
	require.True(t, ok)
	assert.Equal(t, "lastResult", binding)
	assert.Equal(t, "com.example.Report", typeName)

	for _, bad := range []string{"noSeparator", ":leading", "trailing:", "a:b:c", ""} {
		_, _, ok := SplitConditionKey(bad)
		assert.False(t, ok, "key %q must not split", bad)
	}
}

func TestDeterminer_ExplicitConditionWins(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	d := NewBlackboardDeterminer(bb, nil, nil, nil)

	assert.Equal(t, types.Unknown, d.Determine("hasDraft"))
	bb.SetCondition("hasDraft", true)
	assert.Equal(t, types.True, d.Determine("hasDraft"))
	bb.SetCondition("hasDraft", false)
	assert.Equal(t, types.False, d.Determine("hasDraft"))
}

func TestDeterminer_DynamicConditionEvaluated(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	cond := BoolCondition("hasDraft", func(bb *blackboard.Blackboard) bool {
		_, ok := blackboard.LastOf[*draft](bb)
		return ok
	})
	sys := MustSystem(nil, []*Goal{NewGoal("g", EffectSpec{"hasDraft": types.True})}, []*Condition{cond})
	d := NewBlackboardDeterminer(bb, nil, sys, nil)

	assert.Equal(t, types.False, d.Determine("hasDraft"))
	bb.AddObject(&draft{Text: "x"})
	assert.Equal(t, types.True, d.Determine("hasDraft"))
}

func TestDeterminer_BindingTypeKeyResolution(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	dict := blackboard.NewDataDictionary()
	blackboard.RegisterType[*draft](dict)
	d := NewBlackboardDeterminer(bb, dict, nil, nil)

	assert.Equal(t, types.False, d.Determine("current:draft"))
	bb.Bind("current", &draft{Text: "x"})
	assert.Equal(t, types.True, d.Determine("current:draft"))

	// Default binding reaches any object of the type.
	assert.Equal(t, types.True, d.Determine("it:draft"))
}

func TestDeterminer_BareTypeName(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	dict := blackboard.NewDataDictionary()
	blackboard.RegisterType[*draft](dict)
	d := NewBlackboardDeterminer(bb, dict, nil, nil)

	// Known type, no instance: definitively false.
	assert.Equal(t, types.False, d.Determine("draft"))
	bb.AddObject(&draft{Text: "x"})
	assert.Equal(t, types.True, d.Determine("draft"))
}

func TestDeterminer_UnparseableNamesAreUnknown(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	d := NewBlackboardDeterminer(bb, nil, nil, nil)

	assert.Equal(t, types.Unknown, d.Determine("neverHeardOfIt"))
	assert.Equal(t, types.Unknown, d.Determine("a:b:c"))
	assert.Equal(t, types.Unknown, d.Determine(""))
}

func TestDeterminer_WorldStateSnapshot(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	bb.SetCondition("ready", true)
	d := NewBlackboardDeterminer(bb, nil, nil, nil)

	ws := d.WorldState([]string{"ready", "mystery"})
	assert.Equal(t, types.True, ws.Get("ready"))
	assert.Equal(t, types.Unknown, ws.Get("mystery"))
	assert.Len(t, ws, 2)
}

func TestDeterminer_FormulaNames(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	d := NewBlackboardDeterminer(bb, nil, nil, nil)

	bb.SetCondition("hasDraft", true)
	assert.Equal(t, types.Unknown, d.Determine("hasDraft && approved"),
		"unknown conjunct keeps the formula unknown")
	assert.Equal(t, types.True, d.Determine("hasDraft || approved"),
		"a true disjunct decides the formula")

	bb.SetCondition("approved", false)
	assert.Equal(t, types.False, d.Determine("hasDraft && approved"))
	assert.Equal(t, types.True, d.Determine("hasDraft && !approved"))

	bb.SetCondition("approved", true)
	assert.Equal(t, types.False, d.Determine("hasDraft && !approved"))

	// Not a bare name and not a parseable formula either.
	assert.Equal(t, types.Unknown, d.Determine("hasDraft >"))
}

func TestDeterminer_FormulaAtomsUseFullResolution(t *testing.T) {
	t.Parallel()

	bb := blackboard.New(nil)
	dict := blackboard.NewDataDictionary()
	blackboard.RegisterType[*draft](dict)
	reviewed := BoolCondition("reviewed", func(bb *blackboard.Blackboard) bool {
		d, ok := blackboard.LastOf[*draft](bb)
		return ok && d.Text != ""
	})
	sys := MustSystem(nil,
		[]*Goal{NewGoal("g", EffectSpec{"draft && reviewed": types.True})},
		[]*Condition{reviewed},
	)
	d := NewBlackboardDeterminer(bb, dict, sys, nil)

	assert.Equal(t, types.False, d.Determine("draft && reviewed"),
		"dictionary atom and dynamic atom both resolve to false")
	bb.AddObject(&draft{Text: "x"})
	assert.Equal(t, types.True, d.Determine("draft && reviewed"))
}

func TestIsFormulaKey(t *testing.T) {
	t.Parallel()

	assert.True(t, IsFormulaKey("a && b"))
	assert.True(t, IsFormulaKey("!done"))
	assert.True(t, IsFormulaKey("a || (b && !c)"))
	assert.False(t, IsFormulaKey("bareName"))
	assert.False(t, IsFormulaKey("it:draft"))
	assert.False(t, IsFormulaKey(""))
	assert.False(t, IsFormulaKey("a >"))
}

func TestDeterminer_AggregateBackedCondition(t *testing.T) {
	t.Parallel()

	type a struct{ N int }
	type b struct{ S string }
	type combined struct {
		A *a
		B *b
	}

	bb := blackboard.New(nil)
	dict := blackboard.NewDataDictionary()
	require.NoError(t, dict.RegisterAggregate(
		blackboard.RuntimeTypeOf[*combined](),
		[]*blackboard.DomainType{blackboard.RuntimeTypeOf[*a](), blackboard.RuntimeTypeOf[*b]()},
		func(args []any) any { return &combined{A: args[0].(*a), B: args[1].(*b)} },
	))
	d := NewBlackboardDeterminer(bb, dict, nil, nil)

	assert.Equal(t, types.False, d.Determine("it:combined"))
	bb.AddObject(&a{N: 1})
	assert.Equal(t, types.False, d.Determine("it:combined"))
	bb.AddObject(&b{S: "x"})
	assert.Equal(t, types.True, d.Determine("it:combined"),
		"aggregate constructible from parts satisfies the condition")
}
