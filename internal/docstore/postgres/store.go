// Package postgres implements the document store on PostgreSQL: one jsonb
// document table, merge semantics via the jsonb concatenation operator,
// and full-snapshot subscriptions driven by LISTEN/NOTIFY.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/docstore"
)

// notifyChannel carries "userID/collection" payloads for every write.
const notifyChannel = "nestcore_documents"

// Store implements docstore.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL-backed document store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the document table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS nest_documents (
			user_id    TEXT        NOT NULL,
			collection TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Subscribe implements docstore.Store. It holds a dedicated connection on
// LISTEN and re-queries the full collection whenever a matching
// notification arrives (full-snapshot semantics).
func (s *Store) Subscribe(ctx context.Context, userID, collection string, onSnapshot docstore.SnapshotFunc, onError docstore.ErrorFunc) (docstore.CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)

	conn, err := s.pool.Acquire(subCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(subCtx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		cancel()
		return nil, fmt.Errorf("listen: %w", err)
	}

	key := userID + "/" + collection

	go func() {
		defer conn.Release()

		// Initial snapshot before entering the notification loop.
		docs, err := s.query(subCtx, userID, collection)
		if err != nil {
			if subCtx.Err() == nil && onError != nil {
				onError(err)
			}
			return
		}
		onSnapshot(docs)

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil && onError != nil {
					onError(err)
				}
				return
			}
			if notification.Payload != key {
				continue
			}

			docs, err := s.query(subCtx, userID, collection)
			if err != nil {
				if subCtx.Err() == nil && onError != nil {
					onError(err)
				}
				return
			}
			onSnapshot(docs)
		}
	}()

	return func() { cancel() }, nil
}

func (s *Store) query(ctx context.Context, userID, collection string) ([]docstore.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, data, created_at
		FROM nest_documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY created_at, id`,
		userID, collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id        string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		data := map[string]any{}
		if err := json.Unmarshal(raw, &data); err != nil {
			log.Warn().Err(err).Str("collection", collection).Str("doc_id", id).Msg("Skipping undecodable document")
			continue
		}
		docs = append(docs, docstore.Document{ID: id, Data: data, CreatedAt: createdAt})
	}
	return docs, rows.Err()
}

// Create implements docstore.Store.
func (s *Store) Create(ctx context.Context, userID, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	raw, err := marshalFields(fields)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO nest_documents (user_id, collection, id, data)
		VALUES ($1, $2, $3, $4)`,
		userID, collection, id, raw); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	if err := notify(ctx, tx, userID, collection); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	raw, err := marshalFields(fields)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE nest_documents
		SET data = data || $4::jsonb
		WHERE user_id = $1 AND collection = $2 AND id = $3`,
		userID, collection, id, raw)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	if err := notify(ctx, tx, userID, collection); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Set implements docstore.Store.
func (s *Store) Set(ctx context.Context, userID, collection, id string, fields map[string]any) error {
	raw, err := marshalFields(fields)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO nest_documents (user_id, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, collection, id)
		DO UPDATE SET data = nest_documents.data || EXCLUDED.data`,
		userID, collection, id, raw); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	if err := notify(ctx, tx, userID, collection); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete implements docstore.Store. Deleting an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, userID, collection, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM nest_documents
		WHERE user_id = $1 AND collection = $2 AND id = $3`,
		userID, collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := notify(ctx, tx, userID, collection); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Increment implements docstore.Store. The addition happens inside a
// single UPDATE statement, so concurrent increments from any number of
// sessions are serialized by the database row lock.
func (s *Store) Increment(ctx context.Context, userID, collection, id, field string, delta decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE nest_documents
		SET data = jsonb_set(
			data,
			ARRAY[$4],
			to_jsonb((COALESCE(data->>$4, '0')::numeric + $5::numeric)::text),
			true
		)
		WHERE user_id = $1 AND collection = $2 AND id = $3`,
		userID, collection, id, field, delta.String())
	if err != nil {
		return fmt.Errorf("increment document field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	if err := notify(ctx, tx, userID, collection); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func notify(ctx context.Context, tx pgx.Tx, userID, collection string) error {
	_, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, userID+"/"+collection)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func marshalFields(fields map[string]any) ([]byte, error) {
	resolved := make(map[string]any, len(fields))
	now := time.Now().UTC()
	for k, v := range fields {
		if v == docstore.ServerTimestamp {
			resolved[k] = now.Format(time.RFC3339Nano)
			continue
		}
		resolved[k] = v
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("marshal document fields: %w", err)
	}
	return raw, nil
}

// Ensure Store implements docstore.Store.
var _ docstore.Store = (*Store)(nil)
