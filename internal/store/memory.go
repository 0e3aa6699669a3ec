package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore is an in-process Store used by tests and local development.
// FailPut/FailDelete, when set, reject the next matching write so saga
// partial-failure paths can be exercised deterministically.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage
	subs map[int]*memSub
	next int

	FailPut    func(collection, key string) error
	FailDelete func(collection, key string) error
}

type memSub struct {
	collection string
	ch         chan Event
	once       sync.Once
}

const memSubBuffer = 64

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]json.RawMessage),
		subs: make(map[int]*memSub),
	}
}

func (m *MemoryStore) Get(_ context.Context, collection, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.docs[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := coll[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, collection, key string, doc interface{}) error {
	if m.FailPut != nil {
		if err := m.FailPut(collection, key); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	m.mu.Lock()
	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]json.RawMessage)
		m.docs[collection] = coll
	}
	coll[key] = raw
	m.mu.Unlock()

	m.publish(Event{ID: uuid.NewString(), Collection: collection, Key: key, Kind: EventPut, Doc: raw})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, key string) error {
	if m.FailDelete != nil {
		if err := m.FailDelete(collection, key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	existed := false
	if coll, ok := m.docs[collection]; ok {
		if _, ok := coll[key]; ok {
			delete(coll, key)
			existed = true
		}
	}
	m.mu.Unlock()

	// Deleting an absent document is a no-op, and publishes nothing.
	if existed {
		m.publish(Event{ID: uuid.NewString(), Collection: collection, Key: key, Kind: EventDelete})
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]json.RawMessage)
	for key, doc := range m.docs[collection] {
		cp := make(json.RawMessage, len(doc))
		copy(cp, doc)
		out[key] = cp
	}
	return out, nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string) (<-chan Event, CancelFunc) {
	sub := &memSub{collection: collection, ch: make(chan Event, memSubBuffer)}

	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = sub
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.ch, cancel
}

func (m *MemoryStore) publish(evt Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subs {
		if sub.collection != "" && sub.collection != evt.Collection {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Drop the oldest event to make room; writers never block.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- evt:
			default:
			}
		}
	}
}
