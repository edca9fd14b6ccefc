package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDeterminationOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, True, DeterminationOf(true))
	assert.Equal(t, False, DeterminationOf(false))
}

func TestDetermination_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TRUE", True.String())
	assert.Equal(t, "FALSE", False.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
}

func TestDetermination_KleeneTables(t *testing.T) {
	t.Parallel()

	// The fixed points of the three-valued connectives.
	assert.Equal(t, Unknown, Unknown.Not())
	assert.Equal(t, Unknown, Unknown.And(True))
	assert.Equal(t, False, Unknown.And(False))
	assert.Equal(t, True, Unknown.Or(True))
	assert.Equal(t, Unknown, Unknown.Or(False))

	assert.Equal(t, False, True.Not())
	assert.Equal(t, True, False.Not())
	assert.Equal(t, True, True.And(True))
	assert.Equal(t, False, True.And(False))
	assert.Equal(t, False, False.Or(False))
}

func TestDetermination_IsTrueNeverConflatesUnknown(t *testing.T) {
	t.Parallel()

	assert.False(t, Unknown.IsTrue())
	assert.False(t, False.IsTrue())
	assert.True(t, True.IsTrue())
	assert.False(t, Unknown.IsKnown())
}

// genDetermination draws one of the three truth values.
func genDetermination(t *rapid.T, label string) Determination {
	return rapid.SampledFrom([]Determination{True, False, Unknown}).Draw(t, label)
}

func TestProperty_KleeneLogicLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genDetermination(t, "a")
		b := genDetermination(t, "b")
		c := genDetermination(t, "c")

		// Commutativity
		if a.And(b) != b.And(a) {
			t.Fatalf("And not commutative for %v, %v", a, b)
		}
		if a.Or(b) != b.Or(a) {
			t.Fatalf("Or not commutative for %v, %v", a, b)
		}

		// Associativity
		if a.And(b).And(c) != a.And(b.And(c)) {
			t.Fatalf("And not associative")
		}
		if a.Or(b).Or(c) != a.Or(b.Or(c)) {
			t.Fatalf("Or not associative")
		}

		// De Morgan
		if a.And(b).Not() != a.Not().Or(b.Not()) {
			t.Fatalf("De Morgan (And) violated for %v, %v", a, b)
		}
		if a.Or(b).Not() != a.Not().And(b.Not()) {
			t.Fatalf("De Morgan (Or) violated for %v, %v", a, b)
		}

		// Double negation
		if a.Not().Not() != a {
			t.Fatalf("double negation violated for %v", a)
		}
	})
}
