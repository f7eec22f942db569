package entity

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used for unit tests and for
// running the service without a Mongo deployment. It also counts store
// operations so tests can assert the pipeline never reached the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]bson.M
	ops   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]bson.M)}
}

// Ops returns how many repository operations have run.
func (m *MemoryRepository) Ops() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ops
}

func (m *MemoryRepository) List(ctx context.Context) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	out := make([]Document, 0, len(m.store))
	for id, fields := range m.store {
		out = append(out, withID(id, fields))
	}
	return out, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	fields, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(id, fields), nil
}

func (m *MemoryRepository) Create(ctx context.Context, value bson.M) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	id := primitive.NewObjectID()
	m.store[id] = clone(value)
	return id, nil
}

func (m *MemoryRepository) Replace(ctx context.Context, id primitive.ObjectID, value bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	m.store[id] = clone(value)
	return nil
}

func (m *MemoryRepository) Merge(ctx context.Context, id primitive.ObjectID, partial bson.M) (UpdateOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	fields, ok := m.store[id]
	if !ok {
		return OutcomeNoChange, ErrNotFound
	}
	changed := false
	for k, v := range partial {
		if cur, ok := fields[k]; !ok || !reflect.DeepEqual(cur, v) {
			fields[k] = v
			changed = true
		}
	}
	if !changed {
		return OutcomeNoChange, nil
	}
	return OutcomeMerged, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops++
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func withID(id primitive.ObjectID, fields bson.M) Document {
	d := Document{"_id": id}
	for k, v := range fields {
		d[k] = v
	}
	return d
}

func clone(v bson.M) bson.M {
	out := make(bson.M, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
