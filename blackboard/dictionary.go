package blackboard

import (
	"reflect"
	"sync"

	"github.com/BaSui01/goapflow/types"
)

// DataDictionary maps type names to DomainType descriptors and holds the
// aggregate registrations used for construction-from-parts.
type DataDictionary struct {
	mu         sync.RWMutex
	byName     map[string]*DomainType
	aggregates map[string]*Aggregate
}

// Aggregate declares how to build a composite value from independently
// bound parts. Exactly one builder exists per aggregate type; the parts
// are resolved positionally from the board's most recent matching objects.
type Aggregate struct {
	Type   *DomainType
	Params []*DomainType
	Build  func(args []any) any
}

// NewDataDictionary creates an empty dictionary.
func NewDataDictionary() *DataDictionary {
	return &DataDictionary{
		byName:     map[string]*DomainType{},
		aggregates: map[string]*Aggregate{},
	}
}

// Register adds a type under both its qualified and simple names.
// Later registrations win for lookup purposes.
func (d *DataDictionary) Register(t *DomainType) *DomainType {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byName[t.Name()] = t
	d.byName[t.SimpleName()] = t
	return t
}

// RegisterType registers the Go type T.
func RegisterType[T any](d *DataDictionary) *DomainType {
	return d.Register(RuntimeTypeOf[T]())
}

// RegisterAggregate declares t constructible from params via build.
// A second registration for the same type name is a configuration error:
// the original implementation silently picked the first constructor found,
// which this API deliberately forbids.
func (d *DataDictionary) RegisterAggregate(t *DomainType, params []*DomainType, build func(args []any) any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.aggregates[t.Name()]; exists {
		return types.NewErrorf(types.ErrDuplicateAggregate, "aggregate %q already registered", t.Name())
	}
	d.aggregates[t.Name()] = &Aggregate{Type: t, Params: params, Build: build}
	d.byName[t.Name()] = t
	d.byName[t.SimpleName()] = t
	return nil
}

// Lookup resolves a type name (qualified or simple), or nil.
func (d *DataDictionary) Lookup(name string) *DomainType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byName[name]
}

// AggregateFor resolves the aggregate registration for a type name, or nil.
func (d *DataDictionary) AggregateFor(name string) *Aggregate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if agg, ok := d.aggregates[name]; ok {
		return agg
	}
	// Allow lookup by simple name through the type index.
	if t := d.byName[name]; t != nil {
		return d.aggregates[t.Name()]
	}
	return nil
}

// Matches reports whether value can stand in for the named type, consulting
// registered descriptors for supertype matching. Unregistered names fall
// back to comparing the value's own runtime type names.
func (d *DataDictionary) Matches(value any, typeName string) bool {
	if value == nil {
		return false
	}
	if target := d.Lookup(typeName); target != nil {
		if target.AssignableFrom(value) {
			return true
		}
		// Dynamic subtype walk: resolve the value's declared type and
		// check its parent chain.
		if dv, ok := asDynamicValue(value); ok {
			if declared := d.Lookup(dv.TypeName); declared != nil {
				return declared.IsSubtypeOf(target)
			}
		}
		return false
	}
	return runtimeNameMatches(value, typeName)
}

// runtimeNameMatches compares typeName against the simple and qualified
// names of the value's type, dereferencing one pointer level.
func runtimeNameMatches(value any, typeName string) bool {
	if dv, ok := asDynamicValue(value); ok {
		return dv.TypeName == typeName
	}
	vt := reflect.TypeOf(value)
	if vt.Kind() == reflect.Pointer {
		vt = vt.Elem()
	}
	if vt.Name() == typeName || vt.String() == typeName {
		return true
	}
	if pkg := vt.PkgPath(); pkg != "" && pkg+"."+vt.Name() == typeName {
		return true
	}
	return false
}
