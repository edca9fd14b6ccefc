package agent

import (
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/internal/metrics"
	"github.com/BaSui01/goapflow/types"
)

// ProcessOptions configures a process run. The zero value is usable:
// no budget, no throttle, nop logging.
type ProcessOptions struct {
	// Logger receives per-iteration debug logging. Nil means nop.
	Logger *zap.Logger
	// Metrics receives planning and execution metrics. Nil disables
	// recording.
	Metrics *metrics.Collector
	// Dictionary backs condition keys of the "binding:Type" form. Nil
	// means an empty dictionary.
	Dictionary *blackboard.DataDictionary
	// Budget bounds the run; see Budget.
	Budget Budget
	// Policies are additional early-termination checks run between
	// iterations.
	Policies []EarlyTerminationPolicy
	// ActionsPerSecond throttles iterations. Zero disables the limiter.
	ActionsPerSecond float64
	// ActionTimeout bounds one action body. Zero means no timeout.
	ActionTimeout time.Duration
}

// Budget caps the resources one run may spend. Zero fields are
// unbounded. Budget checks run between iterations, never inside the
// planning search or an action body.
type Budget struct {
	// MaxActions caps the number of executed actions.
	MaxActions int
	// MaxCost caps the cumulative planned cost of executed actions.
	MaxCost float64
}

// Exceeded reports which limit stats has crossed, nil if none.
func (b Budget) Exceeded(stats Stats) error {
	if b.MaxActions > 0 && stats.ActionsRun >= b.MaxActions {
		return types.NewErrorf(types.ErrBudgetExceeded,
			"action budget exhausted after %d actions", stats.ActionsRun)
	}
	if b.MaxCost > 0 && stats.CostSpent >= b.MaxCost {
		return types.NewErrorf(types.ErrBudgetExceeded,
			"cost budget exhausted at %.3f", stats.CostSpent)
	}
	return nil
}

// Stats is the running tally a policy decides on.
type Stats struct {
	ActionsRun int
	CostSpent  float64
	Started    time.Time
	Elapsed    time.Duration
}

// EarlyTerminationPolicy stops a run between iterations. A non-nil
// return terminates the process with that reason.
type EarlyTerminationPolicy interface {
	// Name identifies the policy in logs.
	Name() string
	// Check returns a termination reason, or nil to keep running.
	Check(stats Stats) error
}

// MaxRuntimePolicy terminates a run after a wall-clock duration.
type MaxRuntimePolicy struct {
	Limit time.Duration
}

func (p MaxRuntimePolicy) Name() string { return "max_runtime" }

func (p MaxRuntimePolicy) Check(stats Stats) error {
	if p.Limit > 0 && stats.Elapsed >= p.Limit {
		return types.NewErrorf(types.ErrProcessTerminated,
			"runtime limit %s exceeded", p.Limit)
	}
	return nil
}

// PolicyFunc adapts a function to EarlyTerminationPolicy.
type PolicyFunc struct {
	PolicyName string
	Fn         func(stats Stats) error
}

func (p PolicyFunc) Name() string { return p.PolicyName }

func (p PolicyFunc) Check(stats Stats) error { return p.Fn(stats) }
