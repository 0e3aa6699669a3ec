package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Logical collections used by the lifecycle coordinator.
const (
	CollectionRequests = "verificationRequests"
	CollectionProfiles = "userProfiles"
	CollectionHandles  = "handles"
	CollectionInvites  = "artistInvites"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// EventKind describes what happened to a document.
type EventKind string

const (
	EventPut    EventKind = "put"
	EventDelete EventKind = "delete"
)

// Event is a single change published to subscribers after a mutation commits.
type Event struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Key        string          `json:"key"`
	Kind       EventKind       `json:"kind"`
	Doc        json.RawMessage `json:"doc,omitempty"`
}

// CancelFunc detaches a subscriber and closes its channel.
type CancelFunc func()

// Store is generic key-addressed document storage. Writes are durable
// per-document only; multi-document consistency is the caller's problem.
// Delete of a missing document succeeds without error so destructive
// operations stay safe to repeat.
type Store interface {
	Get(ctx context.Context, collection, key string) (json.RawMessage, error)
	Put(ctx context.Context, collection, key string, doc interface{}) error
	Delete(ctx context.Context, collection, key string) error
	List(ctx context.Context, collection string) (map[string]json.RawMessage, error)

	// Subscribe streams change events for one collection, or for all
	// collections when collection is empty. The channel is closed when the
	// context ends or the cancel func is called. Slow consumers lose the
	// oldest buffered events rather than blocking writers.
	Subscribe(ctx context.Context, collection string) (<-chan Event, CancelFunc)
}

// Decode unmarshals a stored document into out, translating a missing
// document into ErrNotFound.
func Decode(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode document")
	}
	return nil
}
