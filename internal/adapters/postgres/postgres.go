// Package postgres adapts the application's own Postgres database - the
// primary store - to the federated record contract. Records live as JSONB
// documents in one table per record type; scope and date-range filters are
// pushed down as JSONB expression predicates.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"fedstore/pkg/domain"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/fedstore?sslmode=disable"
)

// Store holds the shared connection handle for every per-type adapter on
// this database. The pool connects lazily on first use and is reused for the
// process lifetime.
type Store struct {
	db  *sql.DB
	tag domain.StoreTag
	log *zap.Logger
}

// Open prepares the primary store. No connection is made until the first
// query; the pool is safe for concurrent use.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{db: db, tag: domain.TagPrimary, log: log}, nil
}

// Tag returns the store tag every adapter on this database reports.
func (s *Store) Tag() domain.StoreTag { return s.tag }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the document tables if they do not exist. Only the
// primary store is schema-managed by this application; secondary stores are
// owned elsewhere.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, table := range []string{tableRegistrations, tableContacts, tableSignups} {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`, table)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure %s: %w", table, err)
		}
	}
	return nil
}

const (
	tableRegistrations = "event_registrations"
	tableContacts      = "contact_submissions"
	tableSignups       = "email_signups"
)

// docAdapter implements the adapter contract for one JSONB document table.
// The per-type mapper functions are pure and tested without a database.
type docAdapter[T any] struct {
	store *Store
	table string
	// scopeField and timeField name the native JSON fields used for filter
	// pushdown; timeField values are UTC RFC 3339 strings, so lexicographic
	// comparison matches chronological order.
	scopeField string
	timeField  string
	decode     func(tag domain.StoreTag, id string, raw []byte) (T, error)
	encode     func(T) ([]byte, error)
	patch      func(domain.Fields) (map[string]any, error)
}

func (a *docAdapter[T]) Tag() domain.StoreTag { return a.store.tag }

func (a *docAdapter[T]) unavailable(err error) error {
	return domain.ErrUnavailable{Store: a.store.tag, Err: err}
}

// List pushes scope and date-range predicates into the native query and maps
// each document to its canonical shape. Documents the mapper rejects are
// dropped with a warning so one malformed row cannot hide the rest.
func (a *docAdapter[T]) List(ctx context.Context, filter domain.Filter) ([]T, error) {
	query := fmt.Sprintf("SELECT id, doc FROM %s", a.table)
	var args []any
	var where []string
	if filter.Scope != "" {
		args = append(args, filter.Scope)
		where = append(where, fmt.Sprintf("lower(doc->>'%s') = lower($%d)", a.scopeField, len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From.UTC().Format(timeLayout))
		where = append(where, fmt.Sprintf("doc->>'%s' >= $%d", a.timeField, len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.UTC().Format(timeLayout))
		where = append(where, fmt.Sprintf("doc->>'%s' <= $%d", a.timeField, len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += fmt.Sprintf(" ORDER BY doc->>'%s' DESC", a.timeField)

	rows, err := a.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.unavailable(fmt.Errorf("query %s: %w", a.table, err))
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, a.unavailable(fmt.Errorf("scan %s: %w", a.table, err))
		}
		rec, err := a.decode(a.store.tag, id, raw)
		if err != nil {
			a.store.log.Warn("dropping unmappable document",
				zap.String("table", a.table),
				zap.String("native_id", id),
				zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, a.unavailable(fmt.Errorf("iterate %s: %w", a.table, err))
	}
	return out, nil
}

func (a *docAdapter[T]) Get(ctx context.Context, nativeID string) (T, error) {
	var zero T
	var raw []byte
	err := a.store.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE id = $1", a.table), nativeID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	if err != nil {
		return zero, a.unavailable(fmt.Errorf("select %s: %w", a.table, err))
	}
	return a.decode(a.store.tag, nativeID, raw)
}

func (a *docAdapter[T]) Create(ctx context.Context, rec T) (string, error) {
	raw, err := a.encode(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", a.table, err)
	}
	id := uuid.NewString()
	if _, err := a.store.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1, $2)", a.table), id, raw); err != nil {
		return "", a.unavailable(fmt.Errorf("insert %s: %w", a.table, err))
	}
	return id, nil
}

// Update merges a partial native document over the stored one. Only fields
// present in the patch change.
func (a *docAdapter[T]) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	native, err := a.patch(fields)
	if err != nil {
		return err
	}
	if len(native) == 0 {
		return nil
	}
	raw, err := json.Marshal(native)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	res, err := a.store.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET doc = doc || $2::jsonb WHERE id = $1", a.table), nativeID, raw)
	if err != nil {
		return a.unavailable(fmt.Errorf("update %s: %w", a.table, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return a.unavailable(err)
	}
	if affected == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

func (a *docAdapter[T]) Delete(ctx context.Context, nativeID string) error {
	res, err := a.store.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", a.table), nativeID)
	if err != nil {
		return a.unavailable(fmt.Errorf("delete %s: %w", a.table, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return a.unavailable(err)
	}
	if affected == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}
