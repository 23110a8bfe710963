// Package sqlite adapts the legacy form-capture database to the federated
// record contract. The file predates this service; rows use integer keys and
// epoch-millisecond timestamps, both normalized at the mapping boundary.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // register the cgo-free sqlite driver

	"fedstore/pkg/domain"
)

const defaultPath = "forms.db"

// Store wraps the forms database file.
type Store struct {
	db  *sql.DB
	tag domain.StoreTag
	log *zap.Logger
}

// Open opens the forms database, creating the file if needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db, tag: domain.TagForms, log: log}, nil
}

// Tag returns the store tag for this database.
func (s *Store) Tag() domain.StoreTag { return s.tag }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the form_entries table if it does not exist. The legacy
// capture script used the same DDL, so deployments against an existing file
// are a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS form_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		form TEXT NOT NULL DEFAULT '',
		created_ms INTEGER NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure form_entries: %w", err)
	}
	return nil
}

func (s *Store) unavailable(err error) error {
	return domain.ErrUnavailable{Store: s.tag, Err: err}
}

// ContactAdapter serves contact submissions out of form_entries.
type ContactAdapter struct {
	store *Store
}

// Contacts returns the contact-submission adapter for this database.
func (s *Store) Contacts() *ContactAdapter {
	return &ContactAdapter{store: s}
}

// Tag implements the adapter contract.
func (a *ContactAdapter) Tag() domain.StoreTag { return a.store.tag }

// List pushes scope and date-range predicates down; created_ms is a plain
// integer column so range comparison is native.
func (a *ContactAdapter) List(ctx context.Context, filter domain.Filter) ([]domain.ContactSubmission, error) {
	query := "SELECT id, email, name, body, form, created_ms FROM form_entries"
	var args []any
	var where []string
	if filter.Scope != "" {
		where = append(where, "lower(form) = lower(?)")
		args = append(args, filter.Scope)
	}
	if !filter.From.IsZero() {
		where = append(where, "created_ms >= ?")
		args = append(args, filter.From.UnixMilli())
	}
	if !filter.To.IsZero() {
		where = append(where, "created_ms <= ?")
		args = append(args, filter.To.UnixMilli())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_ms DESC"

	rows, err := a.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.store.unavailable(fmt.Errorf("query form_entries: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ContactSubmission
	for rows.Next() {
		rec, err := scanEntry(a.store.tag, rows)
		if err != nil {
			var mapErr domain.ErrMapping
			if errors.As(err, &mapErr) {
				a.store.log.Warn("dropping unmappable row",
					zap.String("table", "form_entries"),
					zap.String("native_id", mapErr.NativeID),
					zap.Error(err))
				continue
			}
			return nil, a.store.unavailable(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, a.store.unavailable(fmt.Errorf("iterate form_entries: %w", err))
	}
	return out, nil
}

// Get fetches one entry by its integer key.
func (a *ContactAdapter) Get(ctx context.Context, nativeID string) (domain.ContactSubmission, error) {
	key, err := parseKey(a.store.tag, nativeID)
	if err != nil {
		return domain.ContactSubmission{}, err
	}
	row := a.store.db.QueryRowContext(ctx,
		"SELECT id, email, name, body, form, created_ms FROM form_entries WHERE id = ?", key)
	rec, err := scanEntry(a.store.tag, row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContactSubmission{}, domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	if err != nil {
		var mapErr domain.ErrMapping
		if errors.As(err, &mapErr) {
			return domain.ContactSubmission{}, err
		}
		return domain.ContactSubmission{}, a.store.unavailable(err)
	}
	return rec, nil
}

// Create inserts a row and returns the assigned integer key as a string.
func (a *ContactAdapter) Create(ctx context.Context, rec domain.ContactSubmission) (string, error) {
	res, err := a.store.db.ExecContext(ctx,
		"INSERT INTO form_entries (email, name, body, form, created_ms) VALUES (?, ?, ?, ?, ?)",
		rec.Email, rec.Name, rec.Message, rec.FormSource, rec.SubmittedAt.UnixMilli())
	if err != nil {
		return "", a.store.unavailable(fmt.Errorf("insert form_entries: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", a.store.unavailable(err)
	}
	return strconv.FormatInt(id, 10), nil
}

// Update applies the canonical field set to the native columns.
func (a *ContactAdapter) Update(ctx context.Context, nativeID string, fields domain.Fields) error {
	key, err := parseKey(a.store.tag, nativeID)
	if err != nil {
		return err
	}
	var sets []string
	var args []any
	for name, value := range fields {
		switch name {
		case domain.FieldEmail:
			sets = append(sets, "email = ?")
			args = append(args, value)
		case domain.FieldName:
			sets = append(sets, "name = ?")
			args = append(args, value)
		case domain.FieldMessage:
			sets = append(sets, "body = ?")
			args = append(args, value)
		}
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, key)
	res, err := a.store.db.ExecContext(ctx,
		"UPDATE form_entries SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return a.store.unavailable(fmt.Errorf("update form_entries: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return a.store.unavailable(err)
	}
	if affected == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

// Delete removes one entry.
func (a *ContactAdapter) Delete(ctx context.Context, nativeID string) error {
	key, err := parseKey(a.store.tag, nativeID)
	if err != nil {
		return err
	}
	res, err := a.store.db.ExecContext(ctx, "DELETE FROM form_entries WHERE id = ?", key)
	if err != nil {
		return a.store.unavailable(fmt.Errorf("delete form_entries: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return a.store.unavailable(err)
	}
	if affected == 0 {
		return domain.ErrNotFound{Store: a.store.tag, NativeID: nativeID}
	}
	return nil
}

// parseKey rejects ids that cannot be an integer key without touching the
// database; those ids can never exist here.
func parseKey(tag domain.StoreTag, nativeID string) (int64, error) {
	key, err := strconv.ParseInt(nativeID, 10, 64)
	if err != nil {
		return 0, domain.ErrNotFound{Store: tag, NativeID: nativeID}
	}
	return key, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(tag domain.StoreTag, row rowScanner) (domain.ContactSubmission, error) {
	var id int64
	var email, name, body, form string
	var createdMS int64
	if err := row.Scan(&id, &email, &name, &body, &form, &createdMS); err != nil {
		return domain.ContactSubmission{}, err
	}
	if createdMS <= 0 {
		return domain.ContactSubmission{}, domain.ErrMapping{
			Store: tag, NativeID: strconv.FormatInt(id, 10), Reason: "missing created_ms",
		}
	}
	return domain.ContactSubmission{
		ID:          strconv.FormatInt(id, 10),
		Email:       email,
		Name:        name,
		Message:     body,
		FormSource:  form,
		SubmittedAt: time.UnixMilli(createdMS).UTC(),
		Origin:      tag,
	}, nil
}
