package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/agent"
	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/goap"
	"github.com/BaSui01/goapflow/types"
)

// Names the builder synthesizes into the loop's planning system.
const (
	// HistoryBinding is the blackboard name the ResultHistory is bound
	// under on the loop's child board.
	HistoryBinding = "attempts"

	GenerateAction    = "generate_result"
	ConsolidateAction = "consolidate_result"
	LoopGoal          = "acceptable_result"

	producedCondition     = "result_produced"
	acceptableCondition   = "result_acceptable"
	consolidatedCondition = "result_consolidated"
)

// DefaultMaxIterations caps a loop when WithMaxIterations is not called.
const DefaultMaxIterations = 3

// GenerateFunc produces one attempt. The history holds all prior
// attempts with their feedback, so a generator can learn from rejections.
type GenerateFunc[R any] func(ctx context.Context, history *ResultHistory[R]) (R, error)

// EvaluateFunc scores the latest attempt, which is already recorded in
// the history.
type EvaluateFunc[R any] func(ctx context.Context, history *ResultHistory[R]) (Feedback, error)

// RepeatUntilBuilder assembles a bounded retry loop: generate a result,
// optionally evaluate it, repeat until an acceptance check passes or the
// iteration cap is reached, then consolidate one result onto the parent
// blackboard. The loop compiles down to ordinary planning primitives and
// runs as a regular agent process on a spawned child board, so
// intermediate attempts never leak to the parent.
type RepeatUntilBuilder[R any] struct {
	generate      GenerateFunc[R]
	evaluate      EvaluateFunc[R]
	accept        func(Feedback) bool
	until         func(history *ResultHistory[R]) bool
	maxIterations int
	logger        *zap.Logger
}

// Returning starts a builder for loops producing R.
func Returning[R any]() *RepeatUntilBuilder[R] {
	return &RepeatUntilBuilder[R]{maxIterations: DefaultMaxIterations}
}

// Repeating sets the generator. Required.
func (b *RepeatUntilBuilder[R]) Repeating(generate GenerateFunc[R]) *RepeatUntilBuilder[R] {
	b.generate = generate
	return b
}

// WithEvaluator sets the evaluator, called once after every attempt.
func (b *RepeatUntilBuilder[R]) WithEvaluator(evaluate EvaluateFunc[R]) *RepeatUntilBuilder[R] {
	b.evaluate = evaluate
	return b
}

// WithAcceptanceCriteria accepts an attempt based on its feedback.
// Requires an evaluator.
func (b *RepeatUntilBuilder[R]) WithAcceptanceCriteria(accept func(Feedback) bool) *RepeatUntilBuilder[R] {
	b.accept = accept
	return b
}

// WithScoreThreshold accepts any attempt whose feedback score reaches
// threshold. Shorthand for the corresponding acceptance criteria.
func (b *RepeatUntilBuilder[R]) WithScoreThreshold(threshold float64) *RepeatUntilBuilder[R] {
	b.accept = func(f Feedback) bool { return f.Score >= threshold }
	return b
}

// Until accepts based on the history instead of feedback, for loops that
// do not score attempts.
func (b *RepeatUntilBuilder[R]) Until(pred func(history *ResultHistory[R]) bool) *RepeatUntilBuilder[R] {
	b.until = pred
	return b
}

// WithMaxIterations caps the number of generator invocations. When the
// cap is reached without acceptance, the loop consolidates what it has
// rather than failing; completion does not imply the check accepted.
func (b *RepeatUntilBuilder[R]) WithMaxIterations(n int) *RepeatUntilBuilder[R] {
	b.maxIterations = n
	return b
}

// WithLogger sets the loop logger. Nil means nop.
func (b *RepeatUntilBuilder[R]) WithLogger(logger *zap.Logger) *RepeatUntilBuilder[R] {
	b.logger = logger
	return b
}

// Build validates the configuration and returns the runnable loop.
func (b *RepeatUntilBuilder[R]) Build() (*Loop[R], error) {
	if b.generate == nil {
		return nil, types.NewError(types.ErrConfigInvalid, "repeat-until loop requires a generator")
	}
	if b.maxIterations < 1 {
		return nil, types.NewErrorf(types.ErrConfigInvalid, "max iterations must be at least 1, got %d", b.maxIterations)
	}
	if b.accept != nil && b.evaluate == nil {
		return nil, types.NewError(types.ErrConfigInvalid, "feedback acceptance criteria require an evaluator")
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop[R]{
		generate:      b.generate,
		evaluate:      b.evaluate,
		accept:        b.accept,
		until:         b.until,
		maxIterations: b.maxIterations,
		logger:        logger.With(zap.String("component", "repeat_until")),
	}, nil
}

// Loop is a built repeat-until workflow.
type Loop[R any] struct {
	generate      GenerateFunc[R]
	evaluate      EvaluateFunc[R]
	accept        func(Feedback) bool
	until         func(history *ResultHistory[R]) bool
	maxIterations int
	logger        *zap.Logger
}

// Run executes the loop on a child board spawned from parent and binds
// the consolidated result onto the parent. The returned history is the
// loop's own record; it is never bound to the parent.
func (l *Loop[R]) Run(ctx context.Context, parent *blackboard.Blackboard, opts agent.ProcessOptions) (R, *ResultHistory[R], error) {
	var zero R

	history := NewResultHistory[R]()
	child := parent.Spawn()
	child.Bind(HistoryBinding, history)

	system, err := l.system(history)
	if err != nil {
		return zero, history, err
	}
	planner := goap.NewPlanner(goap.NewBlackboardDeterminer(child, opts.Dictionary, system, l.logger))
	if opts.Logger == nil {
		opts.Logger = l.logger
	}
	process := agent.NewProcess(system, planner, child, opts)

	status, err := process.Run(ctx)
	if err != nil {
		return zero, history, err
	}
	if status != agent.Completed {
		return zero, history, types.NewErrorf(types.ErrProcessTerminated,
			"retry loop ended %s without consolidating a result", status)
	}

	final, ok := child.Get(blackboard.DefaultBinding).(R)
	if !ok {
		return zero, history, types.NewError(types.ErrUnknownType, "consolidated result has unexpected type")
	}
	parent.AddObject(final)
	l.logger.Debug("retry loop consolidated",
		zap.Int("attempts", history.AttemptCount()),
	)
	return final, history, nil
}

// AsAction wraps the whole loop as a single action for an outer planning
// system. The loop runs against the executing process's blackboard.
func (l *Loop[R]) AsAction(name string, pre, effects goap.EffectSpec, opts agent.ProcessOptions) *goap.Action {
	return goap.NewAction(name, pre, effects,
		goap.WithRun(func(ctx context.Context, bb *blackboard.Blackboard) error {
			_, _, err := l.Run(ctx, bb, opts)
			return err
		}),
	)
}

// system compiles the loop into planning primitives. The generator's
// declared effects are optimistic; the dynamic conditions report the real
// state after each attempt, so the executor keeps replanning the
// generator until the acceptance check or the cap flips acceptability.
func (l *Loop[R]) system(history *ResultHistory[R]) (*goap.System, error) {
	produced := goap.BoolCondition(producedCondition, func(*blackboard.Blackboard) bool {
		return history.AttemptCount() > 0
	})
	acceptable := goap.BoolCondition(acceptableCondition, func(*blackboard.Blackboard) bool {
		return l.accepted(history) || history.AttemptCount() >= l.maxIterations
	})

	generate := goap.NewAction(GenerateAction,
		goap.EffectSpec{},
		goap.EffectSpec{producedCondition: types.True, acceptableCondition: types.True},
		goap.WithCost(0.2),
		goap.WithRun(func(ctx context.Context, _ *blackboard.Blackboard) error {
			result, err := l.generate(ctx, history)
			if err != nil {
				return err
			}
			history.Record(result)
			if l.evaluate == nil {
				return nil
			}
			feedback, err := l.evaluate(ctx, history)
			if err != nil {
				return err
			}
			history.RecordFeedback(feedback)
			return nil
		}),
	)
	consolidate := goap.NewAction(ConsolidateAction,
		goap.EffectSpec{producedCondition: types.True, acceptableCondition: types.True},
		goap.EffectSpec{consolidatedCondition: types.True},
		goap.WithCost(0.1),
		goap.WithRun(func(_ context.Context, bb *blackboard.Blackboard) error {
			best, ok := history.Best()
			if !ok {
				return types.NewError(types.ErrActionFailed, "no attempt to consolidate")
			}
			bb.AddObject(best.Result)
			return nil
		}),
	)
	goal := goap.NewGoal(LoopGoal, goap.EffectSpec{
		acceptableCondition:   types.True,
		consolidatedCondition: types.True,
	})

	return goap.NewSystem(
		[]*goap.Action{generate, consolidate},
		[]*goap.Goal{goal},
		[]*goap.Condition{produced, acceptable},
	)
}

func (l *Loop[R]) accepted(h *ResultHistory[R]) bool {
	if l.until != nil && l.until(h) {
		return true
	}
	if l.accept != nil {
		if last, ok := h.LastAttempt(); ok && last.Feedback != nil {
			return l.accept(*last.Feedback)
		}
	}
	return false
}
