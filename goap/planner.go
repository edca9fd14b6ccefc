package goap

import (
	"container/heap"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPlanDepth bounds the number of actions in a single plan.
// Planning states are condition assignments, so the visited set already
// prevents cycles; the depth bound caps pathological systems where every
// action keeps flipping conditions.
const DefaultMaxPlanDepth = 20

// Planner performs least-cost GOAP search over a world state snapshot.
//
// Determinism: for a fixed system and world state the returned plan is
// always the same: frontier entries with equal cumulative cost are
// expanded in lexicographic order of their joined action-name path, and
// actions are expanded in name order.
type Planner struct {
	determiner Determiner
	maxDepth   int
	logger     *zap.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithMaxPlanDepth overrides the plan-length bound.
func WithMaxPlanDepth(depth int) PlannerOption {
	return func(p *Planner) { p.maxDepth = depth }
}

// WithPlannerLogger attaches a logger.
func WithPlannerLogger(logger *zap.Logger) PlannerOption {
	return func(p *Planner) { p.logger = logger }
}

// NewPlanner creates a planner over the given determiner.
func NewPlanner(determiner Determiner, opts ...PlannerOption) *Planner {
	p := &Planner{
		determiner: determiner,
		maxDepth:   DefaultMaxPlanDepth,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "planner"))
	return p
}

// WorldState snapshots the current determinable state for the system.
func (p *Planner) WorldState(system *System) WorldState {
	return p.determiner.WorldState(system.KnownConditions())
}

// PlanToGoal finds the lowest-cost action sequence whose cumulative
// effects satisfy every precondition of goal, starting from the current
// world state. Returns nil when no sequence exists within the search
// bound, which is the defined stuck outcome, never an error. A goal that is
// already satisfied yields an empty (but non-nil) plan.
func (p *Planner) PlanToGoal(actions []*Action, goal *Goal) *Plan {
	names := map[string]struct{}{}
	for _, a := range actions {
		for _, n := range a.KnownConditions() {
			names[n] = struct{}{}
		}
	}
	for _, n := range goal.KnownConditions() {
		names[n] = struct{}{}
	}
	all := make([]string, 0, len(names))
	for n := range names {
		all = append(all, n)
	}
	sort.Strings(all)
	return p.planFrom(p.determiner.WorldState(all), actions, goal)
}

func (p *Planner) planFrom(start WorldState, actions []*Action, goal *Goal) *Plan {
	if start.Satisfies(goal.pre) {
		return &Plan{goal: goal}
	}

	ordered := append([]*Action(nil), actions...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name() < ordered[j].Name() })

	frontier := &nodeHeap{}
	heap.Init(frontier)
	heap.Push(frontier, &searchNode{state: start})
	best := map[string]float64{start.key(): 0}

	for frontier.Len() > 0 {
		node := heap.Pop(frontier).(*searchNode)
		if node.state.Satisfies(goal.pre) {
			plan := &Plan{actions: node.path, goal: goal, cost: node.cost}
			p.logger.Debug("plan found",
				zap.String("goal", goal.Name()),
				zap.String("plan", plan.String()),
				zap.Float64("cost", plan.cost),
			)
			return plan
		}
		if len(node.path) >= p.maxDepth {
			continue
		}
		for _, action := range ordered {
			if !action.applicable(node.state) {
				continue
			}
			next := node.state.Apply(action.effects)
			cost := node.cost + action.Cost(node.state)
			key := next.key()
			if prev, seen := best[key]; seen && prev <= cost {
				continue
			}
			best[key] = cost
			path := make([]*Action, len(node.path)+1)
			copy(path, node.path)
			path[len(node.path)] = action
			heap.Push(frontier, &searchNode{state: next, path: path, cost: cost})
		}
	}

	p.logger.Debug("no plan", zap.String("goal", goal.Name()))
	return nil
}

// PlansToGoals computes PlanToGoal for every goal in the system
// concurrently, discards the unreachable ones, and sorts descending by
// NetValue against the shared starting state (ties broken by goal name).
func (p *Planner) PlansToGoals(system *System) []*Plan {
	ws := p.WorldState(system)
	goals := system.Goals()
	actions := system.Actions()

	results := make([]*Plan, len(goals))
	var g errgroup.Group
	for i, goal := range goals {
		g.Go(func() error {
			results[i] = p.planFrom(ws.Clone(), actions, goal)
			return nil
		})
	}
	// Worker funcs never error; Wait is for completion only.
	_ = g.Wait()

	plans := make([]*Plan, 0, len(results))
	for _, plan := range results {
		if plan != nil {
			plans = append(plans, plan)
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		ni, nj := plans[i].NetValue(ws), plans[j].NetValue(ws)
		if ni != nj {
			return ni > nj
		}
		return plans[i].goal.Name() < plans[j].goal.Name()
	})
	return plans
}

// BestValuePlanToAnyGoal returns the highest-net-value plan across all
// goals, or nil when every goal is unreachable.
func (p *Planner) BestValuePlanToAnyGoal(system *System) *Plan {
	plans := p.PlansToGoals(system)
	if len(plans) == 0 {
		return nil
	}
	return plans[0]
}

// Prune derives a system keeping only the actions that appear in at least
// one current plan toward at least one goal. Goals and conditions are
// kept. Used to shrink the action set exposed to selection layers that
// degrade with irrelevant choices.
func (p *Planner) Prune(system *System) *System {
	used := map[string]*Action{}
	for _, plan := range p.PlansToGoals(system) {
		for _, a := range plan.actions {
			used[a.Name()] = a
		}
	}
	keep := make([]*Action, 0, len(used))
	for _, a := range used {
		keep = append(keep, a)
	}
	p.logger.Debug("pruned planning system",
		zap.Int("actions_before", len(system.actions)),
		zap.Int("actions_after", len(keep)),
	)
	return system.withActions(keep)
}

// searchNode is one frontier entry of the uniform-cost search.
type searchNode struct {
	state WorldState
	path  []*Action
	cost  float64
}

// nodeHeap orders by cumulative cost, then lexicographically by the
// action-name path for determinism.
type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return pathKey(h[i].path) < pathKey(h[j].path)
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*searchNode)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return node
}
