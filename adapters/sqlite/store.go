package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vdv736/service"
)

// Store is one record collection backed by a table of DB.
type Store[T any] struct {
	db        *DB
	table     string
	marshal   func(T) ([]byte, error)
	unmarshal func(string, []byte) (T, error)
	zero      T
}

// NewStore creates sqlite implementation of generic store interface over table, which must be
// SubscriptionsTable or SituationsTable.
func NewStore[T any](db *DB, table string, marshal func(T) ([]byte, error), unmarshal func(string, []byte) (T, error)) *Store[T] {
	if table != SubscriptionsTable && table != SituationsTable {
		panic("adapters.sqlite.store.go: unknown table " + table)
	}
	return &Store[T]{
		db:        service.NilPanic(db, "adapters.sqlite.store.go: db is required"),
		table:     table,
		marshal:   marshal,
		unmarshal: unmarshal,
	}
}

func (s *Store[T]) CreateValue(ctx context.Context, key string, item T) error {
	bytes, err := s.marshal(item)
	if err != nil {
		return service.NewInternalServerError("SQLite marshal item error", fmt.Errorf("can't marshal item of type %T, err: %w", item, err))
	}

	res, err := s.db.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (id, serialized) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		key, string(bytes))
	if err != nil {
		return service.NewInternalServerError("SQLite insert error", fmt.Errorf("can't create item of type %T (%s id='%s'), err: %w", item, s.table, key, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return service.NewInternalServerError("SQLite insert error", err)
	}
	if n == 0 {
		return service.NewEntityAlreadyExistsError("Entity already exists", fmt.Errorf("%s id '%s' already exists", s.table, key))
	}
	return nil
}

func (s *Store[T]) WriteValue(ctx context.Context, key string, item T) error {
	bytes, err := s.marshal(item)
	if err != nil {
		return service.NewInternalServerError("SQLite marshal item error", fmt.Errorf("can't marshal item of type %T, err: %w", item, err))
	}

	_, err = s.db.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (id, serialized) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET serialized = excluded.serialized`,
		key, string(bytes))
	if err != nil {
		return service.NewInternalServerError("SQLite write error", fmt.Errorf("can't write item of type %T (%s id='%s'), err: %w", item, s.table, key, err))
	}
	return nil
}

func (s *Store[T]) ReadValue(ctx context.Context, key string) (T, error) {
	var raw string
	err := s.db.db.QueryRowContext(ctx, `SELECT serialized FROM `+s.table+` WHERE id = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s.zero, service.NewEntityNotFoundError("Entity not found", fmt.Errorf("%s id '%s' not found", s.table, key))
	}
	if err != nil {
		return s.zero, service.NewInternalServerError("SQLite read error", fmt.Errorf("can't read %s id='%s', err: %w", s.table, key, err))
	}

	item, err := s.unmarshal(key, []byte(raw))
	if err != nil {
		return s.zero, service.NewInternalServerError("SQLite unmarshal item error", fmt.Errorf("can't unmarshal item of type %T, err: %w", s.zero, err))
	}
	return item, nil
}

// ListAllValues returns every record ordered by id.
func (s *Store[T]) ListAllValues(ctx context.Context) ([]T, error) {
	rows, err := s.db.db.QueryContext(ctx, `SELECT id, serialized FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, service.NewInternalServerError("SQLite list error", fmt.Errorf("can't list %s, err: %w", s.table, err))
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, service.NewInternalServerError("SQLite list error", fmt.Errorf("can't scan %s row, err: %w", s.table, err))
		}
		item, err := s.unmarshal(id, []byte(raw))
		if err != nil {
			return nil, service.NewInternalServerError("SQLite unmarshal item error", fmt.Errorf("can't unmarshal item of type %T, err: %w", s.zero, err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, service.NewInternalServerError("SQLite list error", fmt.Errorf("can't list %s, err: %w", s.table, err))
	}
	return items, nil
}

func (s *Store[T]) DeleteValue(ctx context.Context, key string) error {
	_, err := s.db.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = ?`, key)
	if err != nil {
		return service.NewInternalServerError("SQLite delete error", fmt.Errorf("can't delete %s id='%s', err: %w", s.table, key, err))
	}
	return nil
}
