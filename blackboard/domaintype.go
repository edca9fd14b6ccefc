package blackboard

import (
	"reflect"
	"strings"
)

// TypeKind discriminates the two DomainType variants.
type TypeKind int

const (
	// KindRuntime marks a type backed by a concrete in-process Go type.
	KindRuntime TypeKind = iota
	// KindDynamic marks a purely declarative, data-described type.
	KindDynamic
)

// DomainType is a type descriptor: either backed by a reflect.Type or a
// declarative definition with inherited properties. Exactly one variant is
// populated per value; behavior dispatches on Kind.
type DomainType struct {
	kind       TypeKind
	rt         reflect.Type
	name       string
	parents    []*DomainType
	properties map[string]string
}

// RuntimeType wraps a concrete Go type.
func RuntimeType(t reflect.Type) *DomainType {
	return &DomainType{kind: KindRuntime, rt: t}
}

// RuntimeTypeOf wraps the Go type T.
func RuntimeTypeOf[T any]() *DomainType {
	return RuntimeType(reflect.TypeOf((*T)(nil)).Elem())
}

// NewDynamicType declares a data-described type. Properties map property
// name to type name; parents contribute inherited properties.
func NewDynamicType(name string, parents []*DomainType, properties map[string]string) *DomainType {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	return &DomainType{kind: KindDynamic, name: name, parents: parents, properties: props}
}

// Kind returns the variant of this descriptor.
func (t *DomainType) Kind() TypeKind { return t.kind }

// Runtime returns the backing reflect.Type, or nil for dynamic types.
func (t *DomainType) Runtime() reflect.Type {
	if t.kind != KindRuntime {
		return nil
	}
	return t.rt
}

// Name returns the qualified type name.
func (t *DomainType) Name() string {
	switch t.kind {
	case KindRuntime:
		if pkg := t.rt.PkgPath(); pkg != "" {
			return pkg + "." + t.rt.Name()
		}
		return t.rt.String()
	default:
		return t.name
	}
}

// SimpleName returns the last segment of the qualified name.
func (t *DomainType) SimpleName() string {
	name := t.Name()
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// MatchesName reports whether name refers to this type by simple or
// qualified name.
func (t *DomainType) MatchesName(name string) bool {
	return name == t.Name() || name == t.SimpleName()
}

// Properties returns the property name to type-name map. Runtime types
// derive properties from exported struct fields; dynamic types merge their
// own properties over inherited ones.
func (t *DomainType) Properties() map[string]string {
	props := map[string]string{}
	switch t.kind {
	case KindRuntime:
		st := t.rt
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			return props
		}
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if f.IsExported() {
				props[f.Name] = f.Type.String()
			}
		}
	default:
		for _, p := range t.parents {
			for k, v := range p.Properties() {
				props[k] = v
			}
		}
		for k, v := range t.properties {
			props[k] = v
		}
	}
	return props
}

// AssignableFrom reports whether value can stand in for this type:
// runtime types accept assignable values and interface implementations,
// dynamic types accept DynamicValue instances tagged with this type or any
// transitive parent.
func (t *DomainType) AssignableFrom(value any) bool {
	if value == nil {
		return false
	}
	switch t.kind {
	case KindRuntime:
		vt := reflect.TypeOf(value)
		if t.rt.Kind() == reflect.Interface {
			return vt.Implements(t.rt)
		}
		if vt == t.rt || vt.AssignableTo(t.rt) {
			return true
		}
		// A *T value satisfies a request for T.
		return vt.Kind() == reflect.Pointer && vt.Elem() == t.rt
	default:
		// Without the dictionary only an exact tag match can be decided
		// here; subtype walking happens in DataDictionary.Matches, which
		// can resolve the value's declared type.
		dv, ok := asDynamicValue(value)
		return ok && dv.TypeName == t.name
	}
}

// IsSubtypeOf reports whether other appears in this type's transitive
// parent chain. Runtime types answer via reflect assignability.
func (t *DomainType) IsSubtypeOf(other *DomainType) bool {
	if t == other {
		return true
	}
	if t.kind == KindRuntime && other.kind == KindRuntime {
		if other.rt.Kind() == reflect.Interface {
			return t.rt.Implements(other.rt)
		}
		return t.rt.AssignableTo(other.rt)
	}
	for _, p := range t.parents {
		if p == other || p.MatchesName(other.Name()) || p.IsSubtypeOf(other) {
			return true
		}
	}
	return false
}

// DynamicValue is an instance of a dynamic DomainType.
type DynamicValue struct {
	TypeName   string
	Properties map[string]any
}

func asDynamicValue(value any) (*DynamicValue, bool) {
	switch v := value.(type) {
	case *DynamicValue:
		return v, true
	case DynamicValue:
		return &v, true
	default:
		return nil, false
	}
}
