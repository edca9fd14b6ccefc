package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/goap"
	"github.com/BaSui01/goapflow/types"
)

// Planner is the planning strategy a process replans with on every
// iteration. Satisfied by both *goap.Planner and *goap.UtilityPlanner.
type Planner interface {
	WorldState(system *goap.System) goap.WorldState
	BestValuePlanToAnyGoal(system *goap.System) *goap.Plan
}

// Process drives one plan-act-replan loop over a planning system and a
// blackboard. Each iteration replans from scratch and executes only the
// first action of the best plan; the rest of the plan is a feasibility
// commitment, not a schedule.
//
// A process owns exactly one blackboard. Sub-processes run on Spawn
// children and never write back to the parent.
type Process struct {
	id      string
	system  *goap.System
	planner Planner
	bb      *blackboard.Blackboard
	dict    *blackboard.DataDictionary
	opts    ProcessOptions
	logger  *zap.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer

	mu      sync.Mutex
	status  Status
	stats   Stats
	history []string
	goal    *goap.Goal
}

// NewProcess assembles a process. The system, planner, and blackboard
// are required; everything else defaults from the zero ProcessOptions.
func NewProcess(system *goap.System, planner Planner, bb *blackboard.Blackboard, opts ProcessOptions) *Process {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dict := opts.Dictionary
	if dict == nil {
		dict = blackboard.NewDataDictionary()
	}
	var limiter *rate.Limiter
	if opts.ActionsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ActionsPerSecond), 1)
	}
	id := uuid.NewString()
	return &Process{
		id:      id,
		system:  system,
		planner: planner,
		bb:      bb,
		dict:    dict,
		opts:    opts,
		logger:  logger.With(zap.String("component", "process"), zap.String("process_id", id)),
		limiter: limiter,
		tracer:  otel.Tracer("github.com/BaSui01/goapflow/agent"),
		status:  Running,
	}
}

// ID returns the unique process identifier.
func (p *Process) ID() string { return p.id }

// Status returns the current lifecycle state.
func (p *Process) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Stats returns the running tally.
func (p *Process) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// History returns the names of executed actions, in order.
func (p *Process) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.history...)
}

// Blackboard returns the process's working memory.
func (p *Process) Blackboard() *blackboard.Blackboard { return p.bb }

// ReachedGoal returns the goal that completed the process, nil before
// completion.
func (p *Process) ReachedGoal() *goap.Goal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.goal
}

// LastResult returns the most recent default-bound object, nil if none.
func (p *Process) LastResult() any {
	return p.bb.Get(blackboard.DefaultBinding)
}

// Run executes the loop until a terminal status. The returned error is
// non-nil for Failed (the action's error, wrapped) and Terminated (the
// policy or context reason); Completed and Stuck return a nil error.
func (p *Process) Run(ctx context.Context) (Status, error) {
	p.mu.Lock()
	if p.status != Running {
		status := p.status
		p.mu.Unlock()
		return status, types.NewError(types.ErrProcessNotRunning, "process already finished")
	}
	p.stats.Started = time.Now()
	p.mu.Unlock()

	iteration := 0
	for {
		if err := p.checkPolicies(ctx); err != nil {
			return p.finish(Terminated, err)
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return p.finish(Terminated, types.WrapError(err, types.ErrProcessTerminated, "throttle interrupted"))
			}
		}

		iteration++
		status, done, err := p.iterate(ctx, iteration)
		if done {
			return p.finish(status, err)
		}
	}
}

// iterate runs one plan-act cycle. done is false only when the loop
// should continue.
func (p *Process) iterate(ctx context.Context, iteration int) (Status, bool, error) {
	ctx, span := p.tracer.Start(ctx, "process.iteration",
		trace.WithAttributes(
			attribute.String("process.id", p.id),
			attribute.Int("process.iteration", iteration),
		),
	)
	defer span.End()

	planStart := time.Now()
	plan := p.planner.BestValuePlanToAnyGoal(p.system)
	planLatency := time.Since(planStart)

	switch {
	case plan == nil:
		p.recordPlan("none", 0, planLatency)
		p.logger.Info("no plan reaches any goal", zap.Int("iteration", iteration))
		return Stuck, true, nil
	case plan.IsEmpty():
		p.recordPlan("satisfied", 0, planLatency)
		p.mu.Lock()
		p.goal = plan.Goal()
		p.mu.Unlock()
		p.logger.Info("goal satisfied",
			zap.String("goal", plan.Goal().Name()),
			zap.Int("iteration", iteration),
		)
		return Completed, true, nil
	}
	p.recordPlan("found", len(plan.Actions()), planLatency)

	action := plan.First()
	span.SetAttributes(attribute.String("process.action", action.Name()))
	p.logger.Debug("executing action",
		zap.String("action", action.Name()),
		zap.String("plan", plan.String()),
	)

	actionCtx := ctx
	if p.opts.ActionTimeout > 0 {
		var cancel context.CancelFunc
		actionCtx, cancel = context.WithTimeout(ctx, p.opts.ActionTimeout)
		defer cancel()
	}

	actionStart := time.Now()
	err := action.Run(actionCtx, p.bb)
	actionDuration := time.Since(actionStart)

	if err != nil {
		span.RecordError(err)
		p.recordAction(action.Name(), "error", actionDuration)
		wrapped := types.WrapError(err, types.ErrActionFailed, "action "+action.Name()+" failed")
		p.logger.Error("action failed",
			zap.String("action", action.Name()),
			zap.Error(err),
		)
		return Failed, true, wrapped
	}
	p.recordAction(action.Name(), "ok", actionDuration)

	p.assertEffects(action)

	ws := p.planner.WorldState(p.system)
	p.mu.Lock()
	p.history = append(p.history, action.Name())
	p.stats.ActionsRun++
	p.stats.CostSpent += action.Cost(ws)
	p.stats.Elapsed = time.Since(p.stats.Started)
	p.mu.Unlock()

	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordBlackboardSize(p.id, p.bb.Size())
	}

	return Running, false, nil
}

// assertEffects records effect keys with no dynamic backing as explicit
// condition facts. Keys backed by a registered Condition, a
// "binding:Type" convention, a dictionary type, or a boolean formula
// are left to the world state determiner; asserting them here would
// shadow real observation.
func (p *Process) assertEffects(action *goap.Action) {
	for name, det := range action.Effects() {
		if !det.IsKnown() {
			continue
		}
		if p.system.Condition(name) != nil {
			continue
		}
		if _, _, ok := goap.SplitConditionKey(name); ok {
			continue
		}
		if p.dict.Lookup(name) != nil {
			continue
		}
		if goap.IsFormulaKey(name) {
			continue
		}
		p.bb.SetCondition(name, det.IsTrue())
	}
}

func (p *Process) checkPolicies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return types.WrapError(err, types.ErrProcessTerminated, "context canceled")
	}

	p.mu.Lock()
	stats := p.stats
	if !stats.Started.IsZero() {
		stats.Elapsed = time.Since(stats.Started)
		p.stats.Elapsed = stats.Elapsed
	}
	p.mu.Unlock()

	if err := p.opts.Budget.Exceeded(stats); err != nil {
		return err
	}
	for _, policy := range p.opts.Policies {
		if err := policy.Check(stats); err != nil {
			p.logger.Info("early termination",
				zap.String("policy", policy.Name()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (p *Process) finish(status Status, err error) (Status, error) {
	p.mu.Lock()
	p.status = status
	p.stats.Elapsed = time.Since(p.stats.Started)
	p.mu.Unlock()

	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordOutcome(status.String())
	}
	p.logger.Info("process finished",
		zap.String("status", status.String()),
		zap.Int("actions", p.Stats().ActionsRun),
	)
	return status, err
}

func (p *Process) recordPlan(outcome string, length int, latency time.Duration) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordPlan(p.id, outcome, length, latency)
	}
}

func (p *Process) recordAction(action, status string, duration time.Duration) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordAction(p.id, action, status, duration)
	}
}
