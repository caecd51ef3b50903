package db

import (
	"context"
	"sort"
	"sync"

	"campus-walkways/model"

	"github.com/google/uuid"
)

// MemoryStore 内存存储，用于本地开发和测试
type MemoryStore struct {
	mu       sync.RWMutex
	seq      int
	walkways map[string]memEntry[model.Walkway]
	features map[string]memEntry[model.Feature]
}

// memEntry 记录插入顺序，保证 List 结果稳定
type memEntry[T any] struct {
	seq int
	val T
}

// NewMemoryStore 创建一个空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		walkways: make(map[string]memEntry[model.Walkway]),
		features: make(map[string]memEntry[model.Feature]),
	}
}

func sorted[T any](m map[string]memEntry[T]) []T {
	entries := make([]memEntry[T], 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.val
	}
	return out
}

func (s *MemoryStore) ListWalkways(ctx context.Context) ([]model.Walkway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws := sorted(s.walkways)
	for i := range ws {
		ws[i] = ws[i].Clone()
	}
	return ws, nil
}

func (s *MemoryStore) GetWalkway(ctx context.Context, id string) (model.Walkway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.walkways[id]
	if !ok {
		return model.Walkway{}, storeErr("get walkway "+id, ErrNotFound)
	}
	return e.val.Clone(), nil
}

func (s *MemoryStore) SaveWalkway(ctx context.Context, w model.Walkway) (model.Walkway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	seq := s.seq
	if old, ok := s.walkways[w.ID]; ok {
		seq = old.seq
	} else {
		s.seq++
	}
	w = w.Clone()
	s.walkways[w.ID] = memEntry[model.Walkway]{seq: seq, val: w}
	return w.Clone(), nil
}

func (s *MemoryStore) DeleteWalkway(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.walkways[id]; !ok {
		return storeErr("delete walkway "+id, ErrNotFound)
	}
	delete(s.walkways, id)
	return nil
}

func (s *MemoryStore) ListFeatures(ctx context.Context) ([]model.Feature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs := sorted(s.features)
	for i := range fs {
		fs[i] = fs[i].Clone()
	}
	return fs, nil
}

func (s *MemoryStore) SaveFeature(ctx context.Context, f model.Feature) (model.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	seq := s.seq
	if old, ok := s.features[f.ID]; ok {
		seq = old.seq
	} else {
		s.seq++
	}
	s.features[f.ID] = memEntry[model.Feature]{seq: seq, val: f.Clone()}
	return f.Clone(), nil
}

func (s *MemoryStore) DeleteFeature(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.features[id]; !ok {
		return storeErr("delete feature "+id, ErrNotFound)
	}
	delete(s.features, id)
	return nil
}
