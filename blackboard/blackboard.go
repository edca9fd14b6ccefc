package blackboard

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// DefaultBinding is the well-known name of "the last object added without
// an explicit name".
const DefaultBinding = "it"

// entry is one slot in the append-only arena. Hidden entries stay in place
// for audit but are excluded from retrieval.
type entry struct {
	name   string
	value  any
	hidden bool
}

// Blackboard is the shared working memory of one agent process.
// It is safe for concurrent use; Hide is immediately visible to all
// readers once it returns.
type Blackboard struct {
	mu         sync.RWMutex
	entries    []entry
	bindings   map[string]int
	conditions map[string]bool
	logger     *zap.Logger
}

// New creates an empty blackboard. A nil logger falls back to a nop logger.
func New(logger *zap.Logger) *Blackboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Blackboard{
		bindings:   map[string]int{},
		conditions: map[string]bool{},
		logger:     logger.With(zap.String("component", "blackboard")),
	}
}

// Bind binds value under an explicit name. The last write for a name wins
// for lookup purposes; prior objects stay in the arena.
func (b *Blackboard) Bind(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry{name: name, value: value})
	b.bindings[name] = len(b.entries) - 1
	b.logger.Debug("bound object",
		zap.String("name", name),
		zap.String("type", typeNameOf(value)),
		zap.Int("objects", len(b.entries)),
	)
}

// Set is an alias for Bind.
func (b *Blackboard) Set(name string, value any) { b.Bind(name, value) }

// AddObject appends value under the default binding name.
func (b *Blackboard) AddObject(value any) { b.Bind(DefaultBinding, value) }

// Get resolves an explicit binding by name only, with no type matching.
// Hidden objects and unknown names resolve to nil.
func (b *Blackboard) Get(name string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx, ok := b.bindings[name]
	if !ok || b.entries[idx].hidden {
		return nil
	}
	return b.entries[idx].value
}

// LastMatching returns the most recently added visible object satisfying
// pred, or nil.
func (b *Blackboard) LastMatching(pred func(any) bool) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastMatchingLocked(pred)
}

func (b *Blackboard) lastMatchingLocked(pred func(any) bool) any {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if e := b.entries[i]; !e.hidden && pred(e.value) {
			return e.value
		}
	}
	return nil
}

// Last returns the most recently added visible object assignable to t,
// or nil.
func (b *Blackboard) Last(t *DomainType) any {
	return b.LastMatching(t.AssignableFrom)
}

// LastOf returns the most recently added visible object of Go type T.
func LastOf[T any](b *Blackboard) (T, bool) {
	var zero T
	v := b.Last(RuntimeTypeOf[T]())
	if v == nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		// A *T entry satisfies a request for T.
		if ptr, isPtr := v.(*T); isPtr {
			return *ptr, true
		}
		return zero, false
	}
	return typed, true
}

// ObjectsOfType returns all visible objects assignable to t, oldest first.
func (b *Blackboard) ObjectsOfType(t *DomainType) []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []any
	for _, e := range b.entries {
		if !e.hidden && t.AssignableFrom(e.value) {
			out = append(out, e.value)
		}
	}
	return out
}

// Objects returns every object ever added, hidden included, oldest first.
// This is the audit view; Size only ever grows.
func (b *Blackboard) Objects() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]any, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.value
	}
	return out
}

// Size returns the total number of objects ever added, hidden included.
func (b *Blackboard) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Contains reports whether obj was ever added, hidden included.
func (b *Blackboard) Contains(obj any) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if sameObject(e.value, obj) {
			return true
		}
	}
	return false
}

// Hide marks every occurrence of obj invisible to retrieval without
// removing it from the arena.
func (b *Blackboard) Hide(obj any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hidden := 0
	for i := range b.entries {
		if sameObject(b.entries[i].value, obj) {
			b.entries[i].hidden = true
			hidden++
		}
	}
	if hidden > 0 {
		b.logger.Debug("hid object",
			zap.String("type", typeNameOf(obj)),
			zap.Int("occurrences", hidden),
		)
	}
}

// Entry is one visible arena slot, exposed for snapshotting.
type Entry struct {
	Name  string
	Value any
}

// VisibleEntries returns the visible arena content with binding names,
// oldest first.
func (b *Blackboard) VisibleEntries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		if !e.hidden {
			out = append(out, Entry{Name: e.name, Value: e.value})
		}
	}
	return out
}

// Conditions returns a copy of the explicit condition facts.
func (b *Blackboard) Conditions() map[string]bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]bool, len(b.conditions))
	for k, v := range b.conditions {
		out[k] = v
	}
	return out
}

// SetCondition records an explicit fact not backed by a concrete object.
func (b *Blackboard) SetCondition(name string, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conditions[name] = value
}

// GetCondition returns the explicit fact value and whether one was set.
func (b *Blackboard) GetCondition(name string) (bool, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.conditions[name]
	return v, ok
}

// Spawn creates an independent child blackboard inheriting the current
// content snapshot. Further mutation on either board is invisible to the
// other; object values themselves are shared and immutable by contract.
func (b *Blackboard) Spawn() *Blackboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	child := &Blackboard{
		entries:    append([]entry(nil), b.entries...),
		bindings:   make(map[string]int, len(b.bindings)),
		conditions: make(map[string]bool, len(b.conditions)),
		logger:     b.logger,
	}
	for k, v := range b.bindings {
		child.bindings[k] = v
	}
	for k, v := range b.conditions {
		child.conditions[k] = v
	}
	return child
}

// sameObject compares by identity where possible: pointers, maps, slices,
// channels, and funcs compare by reference, comparable values by equality.
func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	default:
		if !av.Type().Comparable() {
			return false
		}
		return a == b
	}
}

func typeNameOf(value any) string {
	if value == nil {
		return "<nil>"
	}
	if dv, ok := asDynamicValue(value); ok {
		return dv.TypeName
	}
	return reflect.TypeOf(value).String()
}
