package blackboard

import "go.uber.org/zap"

// GetValue resolves a value for the requested variable and type name:
//
//  1. an explicit binding under variable that matches the type (simple or
//     qualified name, supertypes included) wins;
//  2. otherwise, when the type names a registered aggregate, an instance is
//     constructed from the board's most recent objects matching each
//     declared part, bound under variable and returned only when every
//     part resolves;
//  3. otherwise, the default binding name falls back to the most recently
//     added object of matching type;
//  4. otherwise nil.
//
// A failed resolution (including a missing aggregate part) is not an
// error: it reports "not satisfiable" and the planner treats the condition
// as not yet true.
func (b *Blackboard) GetValue(variable, typeName string, dict *DataDictionary) any {
	if dict == nil {
		dict = NewDataDictionary()
	}
	if v := b.Get(variable); v != nil && dict.Matches(v, typeName) {
		return v
	}
	if agg := dict.AggregateFor(typeName); agg != nil {
		if args, ok := b.resolveParts(agg); ok {
			if v := agg.Build(args); v != nil {
				b.logger.Debug("synthesized aggregate",
					zap.String("type", agg.Type.Name()),
					zap.String("binding", variable),
				)
				b.Bind(variable, v)
				return v
			}
		}
	}
	if variable == DefaultBinding {
		return b.LastMatching(func(o any) bool { return dict.Matches(o, typeName) })
	}
	return nil
}

// HasValue applies the GetValue algorithm without materializing aggregates:
// an aggregate type reports true when every declared part is independently
// resolvable from the board.
func (b *Blackboard) HasValue(variable, typeName string, dict *DataDictionary) bool {
	if dict == nil {
		dict = NewDataDictionary()
	}
	if v := b.Get(variable); v != nil && dict.Matches(v, typeName) {
		return true
	}
	if agg := dict.AggregateFor(typeName); agg != nil {
		if _, ok := b.resolveParts(agg); ok {
			return true
		}
	}
	if variable == DefaultBinding {
		return b.LastMatching(func(o any) bool { return dict.Matches(o, typeName) }) != nil
	}
	return false
}

// resolveParts resolves every declared aggregate part against the board's
// most recent visible objects. All-or-nothing: a single missing part fails
// the whole resolution.
func (b *Blackboard) resolveParts(agg *Aggregate) ([]any, bool) {
	args := make([]any, len(agg.Params))
	for i, param := range agg.Params {
		v := b.Last(param)
		if v == nil {
			return nil, false
		}
		args[i] = v
	}
	return args, true
}
