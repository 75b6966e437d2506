package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// InMem is an in-memory Store. It backs tests and local development:
// writes through Put/Patch fan the full document out to every
// subscriber of the enclosing collection, mimicking the push behavior
// of the hosted store.
type InMem struct {
	mu     sync.Mutex
	docs   map[string]map[string]json.RawMessage // collection -> id -> value
	subs   map[string][]*inmemSub
	nextID int
}

type inmemSub struct {
	id      int
	handler Handler
	active  bool
}

// NewInMem returns an empty in-memory store.
func NewInMem() *InMem {
	return &InMem{
		docs: make(map[string]map[string]json.RawMessage),
		subs: make(map[string][]*inmemSub),
	}
}

// splitRef accepts "collection" or "collection/id".
func splitRef(path string) (collection, id string) {
	parts := strings.SplitN(strings.Trim(path, "/"), "/", 2)
	collection = parts[0]
	if len(parts) == 2 {
		id = parts[1]
	}
	return collection, id
}

func (m *InMem) Subscribe(ctx context.Context, path string, onSnapshot Handler, onError ErrorHandler) (CancelFunc, error) {
	collection, id := splitRef(path)
	if id != "" {
		return nil, fmt.Errorf("in-memory store only supports collection subscriptions, got %q", path)
	}

	m.mu.Lock()
	m.nextID++
	sub := &inmemSub{id: m.nextID, handler: onSnapshot, active: true}
	m.subs[collection] = append(m.subs[collection], sub)
	snapshot := m.snapshotLocked(collection)
	m.mu.Unlock()

	// Initial snapshot, like the hosted store.
	onSnapshot(snapshot)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		sub.active = false
	}, nil
}

func (m *InMem) Get(ctx context.Context, path string) (json.RawMessage, error) {
	collection, id := splitRef(path)

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if len(m.docs[collection]) == 0 {
			return nil, ErrNotFound
		}
		return m.snapshotLocked(collection), nil
	}

	value, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (m *InMem) Patch(ctx context.Context, path string, fields map[string]any) error {
	collection, id := splitRef(path)
	if id == "" {
		return fmt.Errorf("patch requires a record path, got %q", path)
	}

	m.mu.Lock()

	var doc map[string]any
	if current, ok := m.docs[collection][id]; ok {
		if err := json.Unmarshal(current, &doc); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	} else {
		doc = make(map[string]any)
	}
	for k, v := range fields {
		if v == nil {
			delete(doc, k)
		} else {
			doc[k] = v
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][id] = raw

	snapshot := m.snapshotLocked(collection)
	subs := m.activeSubsLocked(collection)
	m.mu.Unlock()

	for _, s := range subs {
		s.handler(snapshot)
	}
	return nil
}

// Put replaces the record at collection/id and notifies subscribers.
// The hosted store has no equivalent admin-side write; this exists so
// tests and local tooling can seed data.
func (m *InMem) Put(collection, id string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}

	m.mu.Lock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][id] = raw
	snapshot := m.snapshotLocked(collection)
	subs := m.activeSubsLocked(collection)
	m.mu.Unlock()

	for _, s := range subs {
		s.handler(snapshot)
	}
	return nil
}

func (m *InMem) snapshotLocked(collection string) json.RawMessage {
	records := m.docs[collection]
	if len(records) == 0 {
		return json.RawMessage("null")
	}
	raw, _ := json.Marshal(records)
	return raw
}

func (m *InMem) activeSubsLocked(collection string) []*inmemSub {
	var out []*inmemSub
	for _, s := range m.subs[collection] {
		if s.active {
			out = append(out, s)
		}
	}
	return out
}
