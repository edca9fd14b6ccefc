package goap

import (
	"sort"

	"github.com/BaSui01/goapflow/types"
)

// System is the static description of what an agent can do: its actions,
// goals, and dynamically evaluated conditions. Names must be globally
// unique within one system; duplicates are a configuration error rejected
// eagerly at assembly, never silently resolved at planning time.
type System struct {
	actions    map[string]*Action
	goals      map[string]*Goal
	conditions map[string]*Condition
}

// NewSystem assembles and validates a planning system.
func NewSystem(actions []*Action, goals []*Goal, conditions []*Condition) (*System, error) {
	s := &System{
		actions:    make(map[string]*Action, len(actions)),
		goals:      make(map[string]*Goal, len(goals)),
		conditions: make(map[string]*Condition, len(conditions)),
	}
	names := map[string]string{}
	claim := func(name, kind string) error {
		if name == "" {
			return types.NewErrorf(types.ErrEmptyName, "%s with empty name", kind)
		}
		if prev, taken := names[name]; taken {
			return types.NewErrorf(types.ErrDuplicateName, "%s %q collides with %s of the same name", kind, name, prev)
		}
		names[name] = kind
		return nil
	}
	for _, a := range actions {
		if err := claim(a.Name(), "action"); err != nil {
			return nil, err
		}
		s.actions[a.Name()] = a
	}
	for _, g := range goals {
		if err := claim(g.Name(), "goal"); err != nil {
			return nil, err
		}
		s.goals[g.Name()] = g
	}
	for _, c := range conditions {
		if err := claim(c.Name(), "condition"); err != nil {
			return nil, err
		}
		s.conditions[c.Name()] = c
	}
	return s, nil
}

// MustSystem is NewSystem that panics on configuration errors. Intended
// for statically declared systems.
func MustSystem(actions []*Action, goals []*Goal, conditions []*Condition) *System {
	s, err := NewSystem(actions, goals, conditions)
	if err != nil {
		panic(err)
	}
	return s
}

// Actions returns the actions sorted by name.
func (s *System) Actions() []*Action {
	out := make([]*Action, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Goals returns the goals sorted by name.
func (s *System) Goals() []*Goal {
	out := make([]*Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Conditions returns the dynamic conditions sorted by name.
func (s *System) Conditions() []*Condition {
	out := make([]*Condition, 0, len(s.conditions))
	for _, c := range s.conditions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Action resolves an action by name, or nil.
func (s *System) Action(name string) *Action { return s.actions[name] }

// Goal resolves a goal by name, or nil.
func (s *System) Goal(name string) *Goal { return s.goals[name] }

// Condition resolves a dynamic condition by name, or nil.
func (s *System) Condition(name string) *Condition { return s.conditions[name] }

// KnownConditions returns the sorted union of every condition name known
// to any action or goal, plus the dynamic condition names.
func (s *System) KnownConditions() []string {
	seen := map[string]struct{}{}
	for _, a := range s.actions {
		for _, name := range a.KnownConditions() {
			seen[name] = struct{}{}
		}
	}
	for _, g := range s.goals {
		for _, name := range g.KnownConditions() {
			seen[name] = struct{}{}
		}
	}
	for name := range s.conditions {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withActions derives a system restricted to the given actions, keeping
// all goals and conditions. Used by plan pruning; the subset cannot
// introduce duplicates.
func (s *System) withActions(keep []*Action) *System {
	derived := &System{
		actions:    make(map[string]*Action, len(keep)),
		goals:      s.goals,
		conditions: s.conditions,
	}
	for _, a := range keep {
		derived.actions[a.Name()] = a
	}
	return derived
}
