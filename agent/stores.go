package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/goapflow/types"
)

// ====== In-memory store ======

// MemorySnapshotStore keeps snapshots in process memory. Suitable for
// tests and single-run tooling.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewMemorySnapshotStore creates an empty in-memory store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snapshots: map[string]*Snapshot{}}
}

func (s *MemorySnapshotStore) Save(_ context.Context, snapshot *Snapshot) error {
	clone, err := cloneSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.ID] = clone
	return nil
}

func (s *MemorySnapshotStore) Load(_ context.Context, snapshotID string) (*Snapshot, error) {
	s.mu.RLock()
	snapshot, ok := s.snapshots[snapshotID]
	s.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.ErrSnapshotNotFound, "snapshot "+snapshotID+" not found")
	}
	return cloneSnapshot(snapshot)
}

func (s *MemorySnapshotStore) LoadLatest(ctx context.Context, processID string) (*Snapshot, error) {
	all, err := s.List(ctx, processID, 1)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, types.NewError(types.ErrSnapshotNotFound, "no snapshots for process "+processID)
	}
	return all[0], nil
}

func (s *MemorySnapshotStore) List(_ context.Context, processID string, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	var matched []*Snapshot
	for _, snapshot := range s.snapshots {
		if snapshot.ProcessID == processID {
			matched = append(matched, snapshot)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*Snapshot, len(matched))
	for i, snapshot := range matched {
		clone, err := cloneSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		out[i] = clone
	}
	return out, nil
}

func (s *MemorySnapshotStore) Delete(_ context.Context, snapshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, snapshotID)
	return nil
}

func (s *MemorySnapshotStore) DeleteProcess(_ context.Context, processID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, snapshot := range s.snapshots {
		if snapshot.ProcessID == processID {
			delete(s.snapshots, id)
		}
	}
	return nil
}

func cloneSnapshot(snapshot *Snapshot) (*Snapshot, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, types.WrapError(err, types.ErrSnapshotEncoding, "clone snapshot")
	}
	var clone Snapshot
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, types.WrapError(err, types.ErrSnapshotEncoding, "clone snapshot")
	}
	return &clone, nil
}

// ====== File store ======

// FileSnapshotStore persists each snapshot as one JSON file under dir.
type FileSnapshotStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileSnapshotStore creates the directory if missing.
func NewFileSnapshotStore(dir string, logger *zap.Logger) (*FileSnapshotStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "create snapshot dir")
	}
	return &FileSnapshotStore{
		dir:    dir,
		logger: logger.With(zap.String("store", "file_snapshot")),
	}, nil
}

func (s *FileSnapshotStore) Save(_ context.Context, snapshot *Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return types.WrapError(err, types.ErrSnapshotEncoding, "encode snapshot")
	}
	path := s.path(snapshot.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "write snapshot file").WithRetryable(true)
	}
	if err := os.Rename(tmp, path); err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "commit snapshot file").WithRetryable(true)
	}
	s.logger.Debug("snapshot saved", zap.String("path", path))
	return nil
}

func (s *FileSnapshotStore) Load(_ context.Context, snapshotID string) (*Snapshot, error) {
	data, err := os.ReadFile(s.path(snapshotID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewError(types.ErrSnapshotNotFound, "snapshot "+snapshotID+" not found")
		}
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "read snapshot file").WithRetryable(true)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, types.WrapError(err, types.ErrSnapshotEncoding, "decode snapshot")
	}
	return &snapshot, nil
}

func (s *FileSnapshotStore) LoadLatest(ctx context.Context, processID string) (*Snapshot, error) {
	all, err := s.List(ctx, processID, 1)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, types.NewError(types.ErrSnapshotNotFound, "no snapshots for process "+processID)
	}
	return all[0], nil
}

func (s *FileSnapshotStore) List(ctx context.Context, processID string, limit int) ([]*Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "read snapshot dir").WithRetryable(true)
	}

	var matched []*Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		snapshot, err := s.Load(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", zap.String("id", id), zap.Error(err))
			continue
		}
		if snapshot.ProcessID == processID {
			matched = append(matched, snapshot)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *FileSnapshotStore) Delete(_ context.Context, snapshotID string) error {
	if err := os.Remove(s.path(snapshotID)); err != nil && !os.IsNotExist(err) {
		return types.WrapError(err, types.ErrStoreUnavailable, "delete snapshot file")
	}
	return nil
}

func (s *FileSnapshotStore) DeleteProcess(ctx context.Context, processID string) error {
	all, err := s.List(ctx, processID, 0)
	if err != nil {
		return err
	}
	for _, snapshot := range all {
		if err := s.Delete(ctx, snapshot.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileSnapshotStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// ====== Redis store ======

// RedisSnapshotStore persists snapshots in redis: one key per snapshot
// plus a per-process sorted set ordered by creation time.
type RedisSnapshotStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSnapshotStore creates a store over client. A zero ttl keeps
// snapshots until deleted.
func NewRedisSnapshotStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisSnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSnapshotStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(zap.String("store", "redis_snapshot")),
	}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return types.WrapError(err, types.ErrSnapshotEncoding, "encode snapshot")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.snapshotKey(snapshot.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.processKey(snapshot.ProcessID), redis.Z{
		Score:  float64(snapshot.CreatedAt.UnixNano()),
		Member: snapshot.ID,
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.processKey(snapshot.ProcessID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "save snapshot").WithRetryable(true)
	}

	s.logger.Debug("snapshot saved to redis",
		zap.String("snapshot_id", snapshot.ID),
		zap.String("process_id", snapshot.ProcessID),
	)
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, snapshotID string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapshotKey(snapshotID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.NewError(types.ErrSnapshotNotFound, "snapshot "+snapshotID+" not found")
		}
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "load snapshot").WithRetryable(true)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, types.WrapError(err, types.ErrSnapshotEncoding, "decode snapshot")
	}
	return &snapshot, nil
}

func (s *RedisSnapshotStore) LoadLatest(ctx context.Context, processID string) (*Snapshot, error) {
	ids, err := s.client.ZRevRange(ctx, s.processKey(processID), 0, 0).Result()
	if err != nil {
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "load latest snapshot").WithRetryable(true)
	}
	if len(ids) == 0 {
		return nil, types.NewError(types.ErrSnapshotNotFound, "no snapshots for process "+processID)
	}
	return s.Load(ctx, ids[0])
}

func (s *RedisSnapshotStore) List(ctx context.Context, processID string, limit int) ([]*Snapshot, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, s.processKey(processID), 0, stop).Result()
	if err != nil {
		return nil, types.WrapError(err, types.ErrStoreUnavailable, "list snapshots").WithRetryable(true)
	}

	snapshots := make([]*Snapshot, 0, len(ids))
	for _, id := range ids {
		snapshot, err := s.Load(ctx, id)
		if err != nil {
			// Expired snapshot keys can outlive index entries.
			s.logger.Warn("skipping unloadable snapshot", zap.String("id", id), zap.Error(err))
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, snapshotID string) error {
	if err := s.client.Del(ctx, s.snapshotKey(snapshotID)).Err(); err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "delete snapshot").WithRetryable(true)
	}
	return nil
}

func (s *RedisSnapshotStore) DeleteProcess(ctx context.Context, processID string) error {
	ids, err := s.client.ZRange(ctx, s.processKey(processID), 0, -1).Result()
	if err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "list process snapshots").WithRetryable(true)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, s.processKey(processID)).Err(); err != nil {
		return types.WrapError(err, types.ErrStoreUnavailable, "delete process index").WithRetryable(true)
	}
	return nil
}

func (s *RedisSnapshotStore) snapshotKey(id string) string {
	return fmt.Sprintf("%s:snapshot:%s", s.prefix, id)
}

func (s *RedisSnapshotStore) processKey(processID string) string {
	return fmt.Sprintf("%s:process:%s", s.prefix, processID)
}

var (
	_ SnapshotStore = (*MemorySnapshotStore)(nil)
	_ SnapshotStore = (*FileSnapshotStore)(nil)
	_ SnapshotStore = (*RedisSnapshotStore)(nil)
)
