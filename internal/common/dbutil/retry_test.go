package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	commonconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func openSQLite(ctx context.Context) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return db, sqlDB, sqlDB.PingContext(ctx)
}

func TestOpenWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	open := func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		calls++
		if calls < 3 {
			return nil, nil, errors.New("not ready")
		}
		return openSQLite(ctx)
	}

	db, sqlDB, err := OpenWithRetry(context.Background(), open, fastRetry(), testhelper.DiscardLogger())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	defer sqlDB.Close()
	if db == nil || calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestOpenWithRetry_BoundedAttempts(t *testing.T) {
	calls := 0
	open := func(context.Context) (*gorm.DB, *sql.DB, error) {
		calls++
		return nil, nil, errors.New("down")
	}

	_, _, err := OpenWithRetry(context.Background(), open, fastRetry(), testhelper.DiscardLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestOpenWithRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	open := func(context.Context) (*gorm.DB, *sql.DB, error) {
		return nil, nil, errors.New("down")
	}
	_, _, err := OpenWithRetry(ctx, open, RetryConfig{MaxAttempts: 5, BaseDelay: time.Second}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(commonconfig.PostgresConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "hideseek", SSLMode: "disable",
	})
	want := "host=db port=5432 user=u password=p dbname=hideseek sslmode=disable"
	if dsn != want {
		t.Fatalf("dsn = %q, want %q", dsn, want)
	}

	dsn = PostgresDSN(commonconfig.PostgresConfig{SocketPath: "/var/run/postgresql", Port: 5432})
	if dsn[:len("host=/var/run/postgresql")] != "host=/var/run/postgresql" {
		t.Fatalf("socket path must be used as host: %s", dsn)
	}
}
