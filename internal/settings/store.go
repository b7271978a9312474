package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scope groups settings so network credentials can be forgotten on
// their own.
type Scope string

const (
	ScopeDevice  Scope = "device"
	ScopeNetwork Scope = "network"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeDevice || s == ScopeNetwork
}

// Setting is one stored configuration value.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Scope     Scope     `json:"scope"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the device configuration store.
type Store interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, key, value string, scope Scope) error
	List(ctx context.Context) ([]Setting, error)

	// ForgetNetwork removes every network-scoped setting.
	ForgetNetwork(ctx context.Context) (int64, error)

	// Erase removes every setting.
	Erase(ctx context.Context) (int64, error)
}

// SQLiteStore implements Store on the settings table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the setting stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrInvalidKey
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT key, value, scope, updated_at FROM settings WHERE key = ?`, key)

	setting, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying setting %q: %w", key, err)
	}
	return setting, nil
}

// Set inserts or replaces the value for key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string, scope Scope) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if !scope.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, scope, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			scope = excluded.scope,
			updated_at = excluded.updated_at`,
		key, value, string(scope), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}

// List returns all settings ordered by key.
func (s *SQLiteStore) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, scope, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out = append(out, *setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating settings: %w", err)
	}
	return out, nil
}

// ForgetNetwork deletes network-scoped settings and returns how many
// were removed.
func (s *SQLiteStore) ForgetNetwork(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE scope = ?`, string(ScopeNetwork))
	if err != nil {
		return 0, fmt.Errorf("forgetting network settings: %w", err)
	}
	return res.RowsAffected()
}

// Erase deletes every setting and returns how many were removed.
func (s *SQLiteStore) Erase(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM settings`)
	if err != nil {
		return 0, fmt.Errorf("erasing settings: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(row scanner) (*Setting, error) {
	var (
		st        Setting
		scope     string
		updatedAt string
	)
	if err := row.Scan(&st.Key, &st.Value, &scope, &updatedAt); err != nil {
		return nil, err
	}
	st.Scope = Scope(scope)
	st.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt) //nolint:errcheck // Format is ours
	return &st, nil
}
