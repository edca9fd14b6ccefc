package agent

// Status is the lifecycle state of a process run.
type Status int

const (
	// Running means the process is between iterations.
	Running Status = iota
	// Completed means a goal's preconditions were definitively satisfied.
	Completed
	// Stuck means no action sequence reaches any goal from the current
	// world state. Stuck is a defined outcome, not an error.
	Stuck
	// Failed means an action body returned an error.
	Failed
	// Terminated means an early-termination policy or context
	// cancellation stopped the run before completion.
	Terminated
)

// String returns the canonical status name.
func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Stuck:
		return "STUCK"
	case Failed:
		return "FAILED"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status ends the run.
func (s Status) Terminal() bool { return s != Running }
