package blackboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userInput struct{ Content string }

type report struct{ Text string }

func TestBlackboard_BindAndGet(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	in := &userInput{Content: "hello"}
	bb.Bind("input", in)

	assert.Same(t, in, bb.Get("input"))
	assert.Nil(t, bb.Get("missing"))
}

func TestBlackboard_LastWriteWinsButObjectsGrow(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	first := &report{Text: "v1"}
	second := &report{Text: "v2"}
	bb.Bind("draft", first)
	bb.Bind("draft", second)

	assert.Same(t, second, bb.Get("draft"))
	assert.Equal(t, 2, bb.Size(), "rebinding must not remove prior objects")
	assert.True(t, bb.Contains(first))
}

func TestBlackboard_DefaultBinding(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	r := &report{Text: "latest"}
	bb.AddObject(&userInput{Content: "x"})
	bb.AddObject(r)

	assert.Same(t, r, bb.Get(DefaultBinding))
}

func TestBlackboard_LastByType(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	older := &report{Text: "old"}
	newer := &report{Text: "new"}
	bb.AddObject(older)
	bb.AddObject(&userInput{Content: "between"})
	bb.AddObject(newer)

	got, ok := LastOf[*report](bb)
	require.True(t, ok)
	assert.Same(t, newer, got)

	_, ok = LastOf[int](bb)
	assert.False(t, ok)
}

func TestBlackboard_HideExcludesFromRetrievalKeepsAudit(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	r := &report{Text: "consumed"}
	bb.AddObject(r)
	sizeBefore := bb.Size()

	bb.Hide(r)

	assert.Equal(t, sizeBefore, bb.Size(), "hide must not shrink the arena")
	assert.True(t, bb.Contains(r), "hidden objects stay in the audit view")
	assert.Nil(t, bb.Get(DefaultBinding))
	_, ok := LastOf[*report](bb)
	assert.False(t, ok)
	assert.Empty(t, bb.ObjectsOfType(RuntimeTypeOf[*report]()))
}

func TestBlackboard_Conditions(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	_, ok := bb.GetCondition("goalAchieved")
	assert.False(t, ok)

	bb.SetCondition("goalAchieved", true)
	v, ok := bb.GetCondition("goalAchieved")
	assert.True(t, ok)
	assert.True(t, v)

	bb.SetCondition("goalAchieved", false)
	v, ok = bb.GetCondition("goalAchieved")
	assert.True(t, ok)
	assert.False(t, v)
}

func TestBlackboard_SpawnIsIndependent(t *testing.T) {
	t.Parallel()

	parent := New(nil)
	shared := &userInput{Content: "shared"}
	parent.Bind("input", shared)
	parent.SetCondition("ready", true)

	child := parent.Spawn()

	// The child sees the snapshot.
	assert.Same(t, shared, child.Get("input"))
	v, ok := child.GetCondition("ready")
	assert.True(t, ok)
	assert.True(t, v)

	// Child mutation does not leak to the parent.
	childOnly := &report{Text: "child"}
	child.AddObject(childOnly)
	child.SetCondition("done", true)
	assert.False(t, parent.Contains(childOnly))
	_, ok = parent.GetCondition("done")
	assert.False(t, ok)

	// Parent mutation after the spawn does not reach the child.
	parent.Hide(shared)
	assert.Same(t, shared, child.Get("input"))
}

func TestBlackboard_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	bb := New(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			bb.AddObject(&report{Text: "r"})
			bb.SetCondition("tick", i%2 == 0)
		}
	}()
	for i := 0; i < 200; i++ {
		bb.LastMatching(func(any) bool { return true })
		bb.GetCondition("tick")
		bb.Size()
	}
	<-done
	assert.Equal(t, 200, bb.Size())
}
