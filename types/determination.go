package types

// Determination is the truth value of a named condition.
// Unknown is distinct from False: a goal is satisfied only when every
// precondition is definitively True, but Unknown survives into diagnostics
// instead of being collapsed to False.
type Determination int

const (
	// Unknown means the condition cannot currently be determined.
	Unknown Determination = iota
	// False means the condition is definitively not satisfied.
	False
	// True means the condition is definitively satisfied.
	True
)

// DeterminationOf converts a plain boolean into a Determination.
func DeterminationOf(b bool) Determination {
	if b {
		return True
	}
	return False
}

func (d Determination) String() string {
	switch d {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// IsTrue reports whether the condition is definitively satisfied.
// Both False and Unknown report false here.
func (d Determination) IsTrue() bool { return d == True }

// IsKnown reports whether the condition has a definitive value.
func (d Determination) IsKnown() bool { return d != Unknown }

// Not implements Kleene negation: Not(Unknown) = Unknown.
func (d Determination) Not() Determination {
	switch d {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// And implements Kleene conjunction: False dominates, then Unknown.
func (d Determination) And(other Determination) Determination {
	if d == False || other == False {
		return False
	}
	if d == Unknown || other == Unknown {
		return Unknown
	}
	return True
}

// Or implements Kleene disjunction: True dominates, then Unknown.
func (d Determination) Or(other Determination) Determination {
	if d == True || other == True {
		return True
	}
	if d == Unknown || other == Unknown {
		return Unknown
	}
	return False
}
