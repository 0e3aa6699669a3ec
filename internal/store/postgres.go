package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const notifyChannel = "curator_documents"

// PostgresStore keeps documents in a single JSONB table and publishes change
// events through pg_notify, so every subscriber sees writes from every
// process sharing the database.
type PostgresStore struct {
	db     *sql.DB
	dsn    string
	logger zerolog.Logger

	mu        sync.Mutex
	subs      map[int]*memSub
	next      int
	listening bool
}

// NewPostgresStore wraps an open database handle. The DSN is needed a second
// time for the LISTEN connection used by Subscribe.
func NewPostgresStore(db *sql.DB, dsn string, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		dsn:    dsn,
		logger: logger.With().Str("component", "postgres_store").Logger(),
		subs:   make(map[int]*memSub),
	}
}

func (p *PostgresStore) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	const query = `SELECT doc FROM documents WHERE collection = $1 AND key = $2;`

	var doc json.RawMessage
	err := p.db.QueryRowContext(ctx, query, collection, key).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %s/%s", collection, key)
	}
	return doc, nil
}

func (p *PostgresStore) Put(ctx context.Context, collection, key string, doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	const query = `
		INSERT INTO documents (collection, key, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, key) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = now();
	`

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin put")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, collection, key, raw); err != nil {
		return errors.Wrapf(err, "put %s/%s", collection, key)
	}
	if err := notify(ctx, tx, Event{Collection: collection, Key: key, Kind: EventPut}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit put")
}

func (p *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND key = $2;`

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin delete")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, collection, key)
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, key)
	}

	// A missing document is not an error; repeated destructive operations
	// must stay safe. Only real deletions are announced.
	if affected, _ := result.RowsAffected(); affected > 0 {
		if err := notify(ctx, tx, Event{Collection: collection, Key: key, Kind: EventDelete}); err != nil {
			return err
		}
	}
	return errors.Wrap(tx.Commit(), "commit delete")
}

func (p *PostgresStore) List(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	const query = `SELECT key, doc FROM documents WHERE collection = $1 ORDER BY updated_at DESC;`

	rows, err := p.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collection)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key string
			doc json.RawMessage
		)
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, errors.Wrapf(err, "scan %s", collection)
		}
		out[key] = doc
	}
	return out, errors.Wrapf(rows.Err(), "iterate %s", collection)
}

func (p *PostgresStore) Subscribe(ctx context.Context, collection string) (<-chan Event, CancelFunc) {
	sub := &memSub{collection: collection, ch: make(chan Event, memSubBuffer)}

	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = sub
	if !p.listening {
		p.listening = true
		go p.listen()
	}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.ch, cancel
}

func notify(ctx context.Context, tx *sql.Tx, evt Event) error {
	evt.ID = uuid.NewString()
	payload, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encode change event")
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2);`, notifyChannel, string(payload)); err != nil {
		return errors.Wrap(err, "notify change")
	}
	return nil
}

// listen runs for the lifetime of the store, fanning pg notifications out to
// in-process subscribers. Connection hiccups are retried by pq.Listener.
func (p *PostgresStore) listen() {
	listener := pq.NewListener(p.dsn, 10*time.Second, time.Minute, func(_ pq.ListenerEventType, err error) {
		if err != nil {
			p.logger.Warn().Err(err).Msg("listener connection event")
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		p.logger.Error().Err(err).Msg("failed to LISTEN; change feed disabled")
		return
	}

	for notification := range listener.Notify {
		if notification == nil {
			continue // reconnect marker
		}

		var evt Event
		if err := json.Unmarshal([]byte(notification.Extra), &evt); err != nil {
			p.logger.Warn().Err(err).Msg("malformed change payload")
			continue
		}
		if evt.Kind == EventPut {
			if doc, err := p.Get(context.Background(), evt.Collection, evt.Key); err == nil {
				evt.Doc = doc
			}
		}
		p.publish(evt)
	}
}

func (p *PostgresStore) publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sub := range p.subs {
		if sub.collection != "" && sub.collection != evt.Collection {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
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
