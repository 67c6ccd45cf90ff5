package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

func newTestGuessStore(t *testing.T) (*GuessStore, testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewGuessStore(env.adapter, env.validator, testhelper.DiscardLogger()), env
}

func sampleGuess(gameID, userID string, ts int64) *model.GuessData {
	return &model.GuessData{
		GameID:    gameID,
		UserID:    userID,
		Username:  userID,
		ObjectKey: "pumpkin",
		RelX:      0.5,
		RelY:      0.3,
		Timestamp: ts,
		Distance:  0,
		IsCorrect: true,
	}
}

func TestGuessStore_AppendAndList(t *testing.T) {
	store, env := newTestGuessStore(t)
	ctx := context.Background()

	for i, userID := range []string{"u1", "u2", "u1"} {
		if err := store.Append(ctx, sampleGuess("g1", userID, int64(1000+i))); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := store.Append(ctx, sampleGuess("g2", "u1", 5000)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	guesses, err := store.ListByGame(ctx, "g1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(guesses) != 3 {
		t.Fatalf("expected 3 guesses, got %d", len(guesses))
	}
	for _, g := range guesses {
		if g.GameID != "g1" {
			t.Fatalf("foreign guess leaked into list: %+v", g)
		}
	}

	if ttl := env.mr.TTL("hs:guess:g1:u1:1000"); ttl != 30*24*time.Hour {
		t.Fatalf("expected 30d guess ttl, got %v", ttl)
	}
	if ttl := env.mr.TTL("hs:guesses:g1"); ttl != 30*24*time.Hour {
		t.Fatalf("expected 30d index ttl, got %v", ttl)
	}

	empty, err := store.ListByGame(ctx, "none")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", empty, err)
	}
}

func TestGuessStore_ListSkipsStaleMembers(t *testing.T) {
	store, env := newTestGuessStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, sampleGuess("g1", "u1", 1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.Append(ctx, sampleGuess("g1", "u2", 2)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	env.mr.Del("hs:guess:g1:u1:1")
	_ = env.mr.Set("hs:guess:g1:u3:3", "{broken")
	if _, err := env.mr.SAdd("hs:guesses:g1", "hs:guess:g1:u3:3"); err != nil {
		t.Fatalf("sadd failed: %v", err)
	}

	guesses, err := store.ListByGame(ctx, "g1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(guesses) != 1 || guesses[0].UserID != "u2" {
		t.Fatalf("expected only u2, got %+v", guesses)
	}
}

func TestGuessStore_AppendRejectsInvalid(t *testing.T) {
	store, env := newTestGuessStore(t)

	bad := sampleGuess("g1", "u1", 1)
	bad.RelX = 1.0001
	if err := store.Append(context.Background(), bad); !cerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.mr.Exists("hs:guesses:g1") {
		t.Fatal("index must not be touched for an invalid guess")
	}
}

func TestGuessStore_CountByPlayer(t *testing.T) {
	store, env := newTestGuessStore(t)
	ctx := context.Background()

	for _, ts := range []int64{1, 2, 3} {
		if err := store.Append(ctx, sampleGuess("g1", "u1", ts)); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := store.Append(ctx, sampleGuess("g1", "u10", 4)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if !env.mr.Exists("hs:guess:g1:u1:2") {
		t.Fatal("expected existing guess key")
	}

	env.mr.Del("hs:guess:g1:u1:3")
	count, err := store.CountByPlayer(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 live guesses for u1, got %d", count)
	}
}

func TestGuessStore_AppendNeverOverwrites(t *testing.T) {
	store, env := newTestGuessStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, sampleGuess("g1", "u1", 7)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	other := sampleGuess("g1", "u1", 7)
	other.RelX = 0.9
	err := store.Append(ctx, other)
	if !errors.Is(err, ErrGuessKeyTaken) {
		t.Fatalf("expected ErrGuessKeyTaken, got %v", err)
	}

	guesses, err := store.ListByGame(ctx, "g1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(guesses) != 1 || guesses[0].RelX != 0.5 {
		t.Fatalf("stored guess was replaced: %+v", guesses)
	}
	if ttl := env.mr.TTL("hs:guess:g1:u1:7"); ttl <= 0 {
		t.Fatalf("expected ttl on guess key, got %v", ttl)
	}
}

func TestGuessStore_DeleteByGame(t *testing.T) {
	store, env := newTestGuessStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, sampleGuess("g1", "u1", 1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// 인덱스에 없는 키도 SCAN 으로 제거된다.
	_ = env.mr.Set("hs:guess:g1:u9:9", "{}")
	if err := store.Append(ctx, sampleGuess("g2", "u1", 1)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	deleted, err := store.DeleteByGame(ctx, "g1")
	if err != nil || !deleted {
		t.Fatalf("expected deletion, deleted=%v err=%v", deleted, err)
	}
	for _, key := range []string{"hs:guess:g1:u1:1", "hs:guess:g1:u9:9", "hs:guesses:g1"} {
		if env.mr.Exists(key) {
			t.Fatalf("%s must be deleted", key)
		}
	}
	if !env.mr.Exists("hs:guess:g2:u1:1") {
		t.Fatal("other game's guesses must survive")
	}

	deleted, err = store.DeleteByGame(ctx, "g1")
	if err != nil || deleted {
		t.Fatalf("second delete must report false, deleted=%v err=%v", deleted, err)
	}
}
