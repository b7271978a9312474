package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-relay/migrations"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewSQLiteStore(db.DB)
}

func TestSQLiteStore_SetGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "wifi.ssid", "home", ScopeNetwork); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "wifi.ssid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Value != "home" || got.Scope != ScopeNetwork {
		t.Errorf("Get() = %+v, want value home scope network", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Overwrite
	if err := store.Set(ctx, "wifi.ssid", "office", ScopeNetwork); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _ = store.Get(ctx, "wifi.ssid") //nolint:errcheck // Checked above
	if got.Value != "office" {
		t.Errorf("Value after overwrite = %q, want office", got.Value)
	}
}

func TestSQLiteStore_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"get missing", func() error { _, err := store.Get(ctx, "nope"); return err }, ErrNotFound},
		{"get empty key", func() error { _, err := store.Get(ctx, " "); return err }, ErrInvalidKey},
		{"set empty key", func() error { return store.Set(ctx, "", "v", ScopeDevice) }, ErrInvalidKey},
		{"set bad scope", func() error { return store.Set(ctx, "k", "v", Scope("cloud")) }, ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLiteStore_ForgetNetworkThenErase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		key   string
		scope Scope
	}{
		{"wifi.ssid", ScopeNetwork},
		{"wifi.psk", ScopeNetwork},
		{"provisioned_at", ScopeDevice},
	}
	for _, s := range seed {
		if err := store.Set(ctx, s.key, "x", s.scope); err != nil {
			t.Fatalf("Set(%s) error = %v", s.key, err)
		}
	}

	n, err := store.ForgetNetwork(ctx)
	if err != nil {
		t.Fatalf("ForgetNetwork() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ForgetNetwork() removed %d, want 2", n)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Key != "provisioned_at" {
		t.Errorf("List() after forget = %+v, want only provisioned_at", list)
	}

	n, err = store.Erase(ctx)
	if err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Erase() removed %d, want 1", n)
	}

	list, _ = store.List(ctx) //nolint:errcheck // Checked above
	if len(list) != 0 {
		t.Errorf("List() after erase has %d entries, want 0", len(list))
	}
}
