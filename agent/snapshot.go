package agent

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/blackboard"
	"github.com/BaSui01/goapflow/types"
)

// Snapshot is a serializable record of a process's blackboard state:
// visible objects with their bindings, explicit condition facts, and
// the execution history. Hidden arena entries are not captured; a
// restored board starts its own audit trail.
type Snapshot struct {
	ID         string           `json:"id"`
	ProcessID  string           `json:"process_id"`
	Status     string           `json:"status"`
	History    []string         `json:"history"`
	Conditions map[string]bool  `json:"conditions"`
	Objects    []SnapshotObject `json:"objects"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SnapshotObject is one captured blackboard entry.
type SnapshotObject struct {
	Binding  string          `json:"binding"`
	TypeName string          `json:"type_name"`
	Data     json.RawMessage `json:"data"`
}

// SnapshotStore persists snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context, snapshotID string) (*Snapshot, error)
	LoadLatest(ctx context.Context, processID string) (*Snapshot, error)
	List(ctx context.Context, processID string, limit int) ([]*Snapshot, error)
	Delete(ctx context.Context, snapshotID string) error
	DeleteProcess(ctx context.Context, processID string) error
}

// SnapshotManager captures process state into a store and restores
// blackboards from it. Only objects whose type is registered in the
// process dictionary survive the round trip; anything else is skipped
// during capture, since restore could not reconstruct it.
type SnapshotManager struct {
	store  SnapshotStore
	logger *zap.Logger
}

// NewSnapshotManager creates a manager over store.
func NewSnapshotManager(store SnapshotStore, logger *zap.Logger) *SnapshotManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotManager{
		store:  store,
		logger: logger.With(zap.String("component", "snapshot_manager")),
	}
}

// Capture records the process's current state and saves it.
func (m *SnapshotManager) Capture(ctx context.Context, p *Process) (*Snapshot, error) {
	snapshot := &Snapshot{
		ID:         uuid.NewString(),
		ProcessID:  p.ID(),
		Status:     p.Status().String(),
		History:    p.History(),
		Conditions: p.bb.Conditions(),
		CreatedAt:  time.Now(),
	}

	for _, e := range p.bb.VisibleEntries() {
		obj, ok, err := encodeObject(e, p.dict)
		if err != nil {
			return nil, err
		}
		if !ok {
			m.logger.Debug("skipping unregistered object",
				zap.String("binding", e.Name),
			)
			continue
		}
		snapshot.Objects = append(snapshot.Objects, obj)
	}

	if err := m.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	m.logger.Debug("snapshot captured",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("process_id", snapshot.ProcessID),
		zap.Int("objects", len(snapshot.Objects)),
	)
	return snapshot, nil
}

// Restore loads a snapshot and materializes a fresh blackboard from it.
func (m *SnapshotManager) Restore(ctx context.Context, snapshotID string, dict *blackboard.DataDictionary, logger *zap.Logger) (*blackboard.Blackboard, *Snapshot, error) {
	snapshot, err := m.store.Load(ctx, snapshotID)
	if err != nil {
		return nil, nil, err
	}

	bb := blackboard.New(logger)
	for _, obj := range snapshot.Objects {
		value, err := decodeObject(obj, dict)
		if err != nil {
			return nil, nil, err
		}
		bb.Bind(obj.Binding, value)
	}
	for name, v := range snapshot.Conditions {
		bb.SetCondition(name, v)
	}

	m.logger.Info("snapshot restored",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("process_id", snapshot.ProcessID),
	)
	return bb, snapshot, nil
}

// encodeObject serializes one entry if its type is in the dictionary.
func encodeObject(e blackboard.Entry, dict *blackboard.DataDictionary) (SnapshotObject, bool, error) {
	if dv, isDynamic := dynamicValueOf(e.Value); isDynamic {
		if dict.Lookup(dv.TypeName) == nil {
			return SnapshotObject{}, false, nil
		}
		data, err := json.Marshal(dv.Properties)
		if err != nil {
			return SnapshotObject{}, false, types.WrapError(err, types.ErrSnapshotEncoding, "encode dynamic value")
		}
		return SnapshotObject{Binding: e.Name, TypeName: dv.TypeName, Data: data}, true, nil
	}

	typeName := registeredTypeName(e.Value, dict)
	if typeName == "" {
		return SnapshotObject{}, false, nil
	}
	data, err := json.Marshal(e.Value)
	if err != nil {
		return SnapshotObject{}, false, types.WrapError(err, types.ErrSnapshotEncoding, "encode "+typeName)
	}
	return SnapshotObject{Binding: e.Name, TypeName: typeName, Data: data}, true, nil
}

// decodeObject reconstructs a value through the dictionary.
func decodeObject(obj SnapshotObject, dict *blackboard.DataDictionary) (any, error) {
	dt := dict.Lookup(obj.TypeName)
	if dt == nil {
		return nil, types.NewError(types.ErrUnknownType, "snapshot type "+obj.TypeName+" is not registered")
	}

	if dt.Kind() == blackboard.KindDynamic {
		var props map[string]any
		if err := json.Unmarshal(obj.Data, &props); err != nil {
			return nil, types.WrapError(err, types.ErrSnapshotEncoding, "decode dynamic value")
		}
		return &blackboard.DynamicValue{TypeName: obj.TypeName, Properties: props}, nil
	}

	rt := dt.Runtime()
	base := rt
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	ptr := reflect.New(base)
	if err := json.Unmarshal(obj.Data, ptr.Interface()); err != nil {
		return nil, types.WrapError(err, types.ErrSnapshotEncoding, "decode "+obj.TypeName)
	}
	if rt.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

func dynamicValueOf(value any) (*blackboard.DynamicValue, bool) {
	switch v := value.(type) {
	case *blackboard.DynamicValue:
		return v, true
	case blackboard.DynamicValue:
		return &v, true
	default:
		return nil, false
	}
}

// registeredTypeName finds a dictionary name for the value's type, in
// most-specific-first order, or "" when the type is not registered.
func registeredTypeName(value any, dict *blackboard.DataDictionary) string {
	if value == nil {
		return ""
	}
	rt := reflect.TypeOf(value)
	base := rt
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	candidates := []string{rt.String(), base.String(), base.Name()}
	if pkg := base.PkgPath(); pkg != "" {
		candidates = append(candidates, pkg+"."+base.Name())
	}
	for _, name := range candidates {
		if name != "" && dict.Lookup(name) != nil {
			return name
		}
	}
	return ""
}
