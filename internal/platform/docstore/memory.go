package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryCollection keeps documents in process memory. Used by tests and the
// memory store driver.
type MemoryCollection[T Document[T]] struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]T
}

// NewMemoryCollection constructs an empty collection.
func NewMemoryCollection[T Document[T]]() *MemoryCollection[T] {
	return &MemoryCollection[T]{docs: make(map[string]T)}
}

func (c *MemoryCollection[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out, nil
}

func (c *MemoryCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return zero, ErrNotFound
	}
	return doc, nil
}

func (c *MemoryCollection[T]) FindOne(ctx context.Context, field, value string) (T, error) {
	var zero T
	if err := validField(field); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		doc := c.docs[id]
		got, err := fieldValue(doc, field)
		if err != nil {
			return zero, err
		}
		if got == value {
			return doc, nil
		}
	}
	return zero, ErrNotFound
}

func (c *MemoryCollection[T]) Insert(ctx context.Context, doc T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	id := doc.DocID()
	if id == "" {
		id = uuid.NewString()
	}
	doc = doc.WithDocID(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; exists {
		return zero, fmt.Errorf("docstore: insert: duplicate id %s", id)
	}
	c.docs[id] = doc
	c.order = append(c.order, id)
	return doc, nil
}

func (c *MemoryCollection[T]) Replace(ctx context.Context, id string, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	c.docs[id] = doc.WithDocID(id)
	return nil
}

func (c *MemoryCollection[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds.
func (c *MemoryCollection[T]) Ping(context.Context) error { return nil }

// fieldValue reads a top-level field by its JSON name, mirroring how the other
// backends address fields.
func fieldValue(doc any, field string) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("docstore: encode: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("docstore: decode: %w", err)
	}
	v, ok := fields[field]
	if !ok || v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}
