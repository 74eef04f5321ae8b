package collections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Locks serializes read-modify-write cycles per collection key inside one process.
type Locks struct {
	mu    sync.Mutex
	byKey map[Key]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{byKey: make(map[Key]*sync.Mutex)}
}

func (l *Locks) lock(key Key) func() {
	l.mu.Lock()
	m, ok := l.byKey[key]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Collection is a typed list persisted as one document per namespace.
type Collection[T any] struct {
	store Store
	name  string
	locks *Locks
}

func NewCollection[T any](store Store, name string, locks *Locks) *Collection[T] {
	if locks == nil {
		locks = NewLocks()
	}
	return &Collection[T]{store: store, name: name, locks: locks}
}

func (c *Collection[T]) key(namespace string) Key {
	return Key{Namespace: namespace, Collection: c.name}
}

// List returns every item, or an empty slice when the collection was never saved.
func (c *Collection[T]) List(ctx context.Context, namespace string) ([]T, error) {
	return c.load(ctx, c.key(namespace))
}

// Save replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, namespace string, items []T) error {
	key := c.key(namespace)
	unlock := c.locks.lock(key)
	defer unlock()
	return c.save(ctx, key, items)
}

// Update loads the collection, applies fn and saves the result while holding
// the collection lock. Returning an error from fn aborts without saving.
func (c *Collection[T]) Update(ctx context.Context, namespace string, fn func(items []T) ([]T, error)) ([]T, error) {
	key := c.key(namespace)
	unlock := c.locks.lock(key)
	defer unlock()

	items, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *Collection[T]) load(ctx context.Context, key Key) ([]T, error) {
	payload, err := c.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	items := []T{}
	if len(payload) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, key Key, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Document is a single value persisted under a namespace, used for settings.
type Document[T any] struct {
	store Store
	name  string
}

func NewDocument[T any](store Store, name string) *Document[T] {
	return &Document[T]{store: store, name: name}
}

// Get returns the stored value and whether one existed.
func (d *Document[T]) Get(ctx context.Context, namespace string) (T, bool, error) {
	var out T
	key := Key{Namespace: namespace, Collection: d.name}
	payload, err := d.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, true, nil
}

func (d *Document[T]) Put(ctx context.Context, namespace string, value T) error {
	key := Key{Namespace: namespace, Collection: d.name}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.store.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
