package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteTimeout = 5 * time.Second

type kvRow struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Name      string    `bun:"name,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLite is a Store backed by a single SQLite table.
type SQLite struct {
	typed

	db *bun.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string, log *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("kv: sqlite path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("kv: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	if _, err := db.NewCreateTable().Model((*kvRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create kv_entries table: %w", err)
	}

	s := &SQLite{db: db}
	s.typed = newTyped(s, log)
	return s, nil
}

func (s *SQLite) read(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	row := new(kvRow)
	if err := s.db.NewSelect().Model(row).Where("name = ?", key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, err
	}
	return row.Value, nil
}

func (s *SQLite) write(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	row := &kvRow{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *SQLite) erase(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	_, err := s.db.NewDelete().Model((*kvRow)(nil)).Where("name = ?", key).Exec(ctx)
	return err
}

func (s *SQLite) eraseAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteTimeout)
	defer cancel()
	_, err := s.db.NewDelete().Model((*kvRow)(nil)).Where("1 = 1").Exec(ctx)
	return err
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
