package redis

import (
	"context"
	"testing"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

func TestPlayerStore_SaveGetDelete(t *testing.T) {
	env := newTestEnv(t)
	store := NewPlayerStore(env.adapter, env.validator, testhelper.DiscardLogger())
	ctx := context.Background()

	if got, err := store.Get(ctx, "u1"); err != nil || got != nil {
		t.Fatalf("expected absent player, got %+v err=%v", got, err)
	}

	profile := &model.PlayerProfile{
		UserID:            "u1",
		Username:          "seeker",
		Rank:              model.RankSeeker,
		TotalGuesses:      10,
		SuccessfulGuesses: 9,
		SuccessRate:       0.9,
		JoinedAt:          1,
		LastActive:        2,
	}
	if err := store.Save(ctx, profile); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if ttl := env.mr.TTL("hs:player:u1"); ttl != 90*24*time.Hour {
		t.Fatalf("expected 90d player ttl, got %v", ttl)
	}

	// 쓰기마다 TTL 이 갱신된다.
	env.mr.FastForward(24 * time.Hour)
	profile.LastActive = 3
	if err := store.Save(ctx, profile); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if ttl := env.mr.TTL("hs:player:u1"); ttl != 90*24*time.Hour {
		t.Fatalf("expected refreshed ttl, got %v", ttl)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil || got == nil || *got != *profile {
		t.Fatalf("unexpected profile %+v err=%v", got, err)
	}

	deleted, err := store.Delete(ctx, "u1")
	if err != nil || !deleted {
		t.Fatalf("expected deletion, err=%v", err)
	}
}

func TestPlayerStore_RejectsInconsistentProfile(t *testing.T) {
	env := newTestEnv(t)
	store := NewPlayerStore(env.adapter, env.validator, testhelper.DiscardLogger())

	bad := &model.PlayerProfile{UserID: "u1", TotalGuesses: 1, SuccessfulGuesses: 2, SuccessRate: 1}
	if err := store.Save(context.Background(), bad); !cerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
