package goap

import (
	"sort"
	"strings"

	"github.com/BaSui01/goapflow/types"
)

// WorldState is a truth-value assignment over named conditions, derived on
// demand by a Determiner. Absent names read as Unknown.
type WorldState map[string]types.Determination

// Get returns the determination for name, Unknown when absent.
func (w WorldState) Get(name string) types.Determination {
	return w[name]
}

// Clone returns an independent copy.
func (w WorldState) Clone() WorldState {
	out := make(WorldState, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Apply returns a copy of the state with the effects asserted.
func (w WorldState) Apply(effects EffectSpec) WorldState {
	out := w.Clone()
	for k, v := range effects {
		out[k] = v
	}
	return out
}

// Satisfies reports whether every entry of spec holds definitively:
// the state value must equal the expected determination. Unknown never
// satisfies anything, including an expected False.
func (w WorldState) Satisfies(spec EffectSpec) bool {
	for name, expected := range spec {
		actual := w[name]
		if !actual.IsKnown() || actual != expected {
			return false
		}
	}
	return true
}

// key is the canonical ordering-independent encoding used by the planner's
// visited set.
func (w WorldState) key() string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(w[name].String())
	}
	return sb.String()
}

func (w WorldState) String() string {
	return "{" + w.key() + "}"
}
