package goap

import "strings"

// Plan is an ordered action sequence reaching a goal, plus the cumulative
// cost computed at planning time. The executor applies the first action and
// re-plans; the rest of the sequence is a commitment only to feasibility.
type Plan struct {
	actions []*Action
	goal    *Goal
	cost    float64
}

// Actions returns the planned sequence, first action first.
func (p *Plan) Actions() []*Action {
	return append([]*Action(nil), p.actions...)
}

// Goal returns the goal this plan reaches.
func (p *Plan) Goal() *Goal { return p.goal }

// Cost returns the cumulative action cost computed during the search.
func (p *Plan) Cost() float64 { return p.cost }

// First returns the next action to execute, nil for an empty plan (goal
// already satisfied).
func (p *Plan) First() *Action {
	if len(p.actions) == 0 {
		return nil
	}
	return p.actions[0]
}

// IsEmpty reports whether the goal was already satisfied at planning time.
func (p *Plan) IsEmpty() bool { return len(p.actions) == 0 }

// NetValue nets the goal's value against the plan's total action cost:
// a cheap plan to a low-value goal can lose to a pricier plan toward a
// high-value goal.
func (p *Plan) NetValue(ws WorldState) float64 {
	return p.goal.Value(ws) - p.cost
}

func (p *Plan) String() string {
	names := make([]string, 0, len(p.actions)+1)
	for _, a := range p.actions {
		names = append(names, a.Name())
	}
	names = append(names, "goal:"+p.goal.Name())
	return strings.Join(names, " -> ")
}

// pathKey is the deterministic tie-break ordering for equal-cost plans:
// lexicographic on the joined action-name path.
func pathKey(actions []*Action) string {
	var sb strings.Builder
	for i, a := range actions {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(a.Name())
	}
	return sb.String()
}
