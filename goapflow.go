// Package goapflow provides a top-level convenience entry point for
// running a planning system with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/goapflow"
//
//	p := goapflow.New(system)
//	p := goapflow.New(system, goapflow.WithLogger(logger), goapflow.WithDictionary(dict))
//	status, err := p.Run(ctx)
//
// New wires a blackboard, a world-state determiner, and a planner
// together; use the agent and goap packages directly when you need
// control over any of those pieces.
package goapflow

import (
	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/agent"
	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/goap"
)

// Option configures the process created by [New].
type Option func(*settings)

type settings struct {
	logger   *zap.Logger
	dict     *blackboard.DataDictionary
	bb       *blackboard.Blackboard
	maxDepth int
	utility  bool
	process  agent.ProcessOptions
}

// WithLogger sets the logger for every wired component.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithDictionary sets the type dictionary backing "binding:Type"
// condition keys and snapshot capture.
func WithDictionary(dict *blackboard.DataDictionary) Option {
	return func(s *settings) { s.dict = dict }
}

// WithBlackboard runs the process on an existing blackboard instead of
// a fresh one.
func WithBlackboard(bb *blackboard.Blackboard) Option {
	return func(s *settings) { s.bb = bb }
}

// WithMaxPlanDepth bounds the number of actions in a single plan.
func WithMaxPlanDepth(depth int) Option {
	return func(s *settings) { s.maxDepth = depth }
}

// WithUtilityPlanner selects utility-based action ranking instead of
// goal-directed search. The system must come from
// [goap.NewUtilitySystem].
func WithUtilityPlanner() Option {
	return func(s *settings) { s.utility = true }
}

// WithProcessOptions sets the executor options. Logger and Dictionary
// fields left nil are filled from the other options.
func WithProcessOptions(opts agent.ProcessOptions) Option {
	return func(s *settings) { s.process = opts }
}

// New creates a ready-to-run process over system.
func New(system *goap.System, opts ...Option) *agent.Process {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.bb == nil {
		s.bb = blackboard.New(s.logger)
	}

	determiner := goap.NewBlackboardDeterminer(s.bb, s.dict, system, s.logger)
	var planner agent.Planner
	if s.utility {
		planner = goap.NewUtilityPlanner(determiner, s.logger)
	} else {
		var plannerOpts []goap.PlannerOption
		if s.maxDepth > 0 {
			plannerOpts = append(plannerOpts, goap.WithMaxPlanDepth(s.maxDepth))
		}
		planner = goap.NewPlanner(determiner, plannerOpts...)
	}

	if s.process.Logger == nil {
		s.process.Logger = s.logger
	}
	if s.process.Dictionary == nil {
		s.process.Dictionary = s.dict
	}
	return agent.NewProcess(system, planner, s.bb, s.process)
}
