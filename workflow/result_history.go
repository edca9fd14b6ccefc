package workflow

import (
	"sync"
	"time"
)

// Feedback scores one attempt. Score is in [0,1] by convention; Text
// carries the evaluator's commentary for the next attempt to read.
type Feedback struct {
	Score float64
	Text  string
}

// Attempt pairs a produced result with the feedback it earned, if any.
type Attempt[R any] struct {
	Result   R
	Feedback *Feedback
}

// ResultHistory collects the attempts of one retry loop. It is bound once
// onto the loop's blackboard and appended to by the generator action;
// prior attempts are never modified.
type ResultHistory[R any] struct {
	mu       sync.RWMutex
	attempts []Attempt[R]
	created  time.Time
}

// NewResultHistory creates an empty history stamped with the current time.
func NewResultHistory[R any]() *ResultHistory[R] {
	return &ResultHistory[R]{created: time.Now()}
}

// Created returns the history's creation time.
func (h *ResultHistory[R]) Created() time.Time { return h.created }

// Record appends a new attempt without feedback.
func (h *ResultHistory[R]) Record(result R) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts = append(h.attempts, Attempt[R]{Result: result})
}

// RecordFeedback attaches feedback to the latest attempt. A no-op on an
// empty history.
func (h *ResultHistory[R]) RecordFeedback(f Feedback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.attempts) == 0 {
		return
	}
	h.attempts[len(h.attempts)-1].Feedback = &f
}

// AttemptCount returns the number of recorded attempts.
func (h *ResultHistory[R]) AttemptCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.attempts)
}

// LastAttempt returns the most recent attempt, false when none exist.
func (h *ResultHistory[R]) LastAttempt() (Attempt[R], bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.attempts) == 0 {
		return Attempt[R]{}, false
	}
	return h.attempts[len(h.attempts)-1], true
}

// Attempts returns a copy of all attempts in production order.
func (h *ResultHistory[R]) Attempts() []Attempt[R] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Attempt[R](nil), h.attempts...)
}

// Best returns the attempt to consolidate: the highest-scoring one when
// any attempt carries feedback (earliest wins a tie), otherwise the last
// attempt. False when the history is empty.
func (h *ResultHistory[R]) Best() (Attempt[R], bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.attempts) == 0 {
		return Attempt[R]{}, false
	}
	best := -1
	for i, a := range h.attempts {
		if a.Feedback == nil {
			continue
		}
		if best < 0 || a.Feedback.Score > h.attempts[best].Feedback.Score {
			best = i
		}
	}
	if best < 0 {
		return h.attempts[len(h.attempts)-1], true
	}
	return h.attempts[best], true
}
