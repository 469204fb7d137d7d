package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every new :memory: connection is a fresh database.
	db.SetMaxOpenConns(1)

	service, err := newServiceFromDB(context.Background(), db)
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return service, cleanup
}

func TestLoadToken_Empty(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := service.LoadToken(context.Background())
	if !errors.Is(err, store.ErrTokenNotFound) {
		t.Fatalf("Expected ErrTokenNotFound, got %v", err)
	}
}

func TestSaveToken_Overwrites(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.SaveToken(ctx, "tok1"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := service.SaveToken(ctx, "tok2"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}

	token, err := service.LoadToken(ctx)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "tok2" {
		t.Errorf("Expected tok2, got %q", token)
	}

	var rows int
	if err := service.db.QueryRow("SELECT COUNT(*) FROM session_state").Scan(&rows); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected a single persisted row, got %d", rows)
	}
}

func TestSaveToken_RejectsEmpty(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	if err := service.SaveToken(context.Background(), ""); err == nil {
		t.Error("Expected error when saving an empty token")
	}
}

func TestDeleteToken(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.DeleteToken(ctx); err != nil {
		t.Fatalf("Deleting with nothing persisted should succeed: %v", err)
	}
	if err := service.SaveToken(ctx, "tok1"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := service.DeleteToken(ctx); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}
	if _, err := service.LoadToken(ctx); !errors.Is(err, store.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound after delete, got %v", err)
	}
}

func TestNewService_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "session.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	}

	first, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if err := first.SaveToken(ctx, "persisted"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	first.Close()

	second, err := NewService(ctx, cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	token, err := second.LoadToken(ctx)
	if err != nil {
		t.Fatalf("LoadToken failed: %v", err)
	}
	if token != "persisted" {
		t.Errorf("Expected persisted token, got %q", token)
	}
}

func TestNewService_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.DatabaseConfig
	}{
		{"empty path", models.DatabaseConfig{MaxOpenConns: 1, PingTimeout: time.Second}},
		{"zero conns", models.DatabaseConfig{Path: "x.db", PingTimeout: time.Second}},
		{"negative idle", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1, MaxIdleConns: -1, PingTimeout: time.Second}},
		{"zero ping timeout", models.DatabaseConfig{Path: "x.db", MaxOpenConns: 1}},
	}
	for _, tt := range tests {
		if _, err := NewService(context.Background(), tt.cfg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
