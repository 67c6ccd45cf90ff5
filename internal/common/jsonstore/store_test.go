package jsonstore

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
)

type sample struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func newSampleStore(t *testing.T) (*Store[sample], *valkeyx.Adapter) {
	t.Helper()
	adapter, _ := testhelper.NewTestAdapter(t)
	store := New(adapter, testhelper.DiscardLogger(), Config[sample]{
		Name:    "sample",
		KeyFunc: func(id string) string { return valkeyx.BuildKey("test:sample", id) },
		TTL:     time.Hour,
		Validate: func(s *sample) error {
			if s.Count < 0 {
				return cerrors.ValidationError{Field: "count", Reason: "must be >= 0"}
			}
			return nil
		},
	})
	return store, adapter
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, adapter := newSampleStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "a", &sample{ID: "a", Count: 3}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got == nil || got.ID != "a" || got.Count != 3 {
		t.Fatalf("unexpected record: %+v", got)
	}

	ttl, err := adapter.TTL(ctx, "test:sample:a")
	if err != nil {
		t.Fatalf("ttl failed: %v", err)
	}
	if ttl <= 0 || ttl > 3600 {
		t.Fatalf("expected ttl within 1h, got %d", ttl)
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store, adapter := newSampleStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "bad", &sample{ID: "bad", Count: -1})
	var vErr cerrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if exists, _ := adapter.Exists(ctx, "test:sample:bad"); exists {
		t.Fatalf("invalid record must not be written")
	}
}

func TestStore_CorruptRecordIsAbsent(t *testing.T) {
	store, adapter := newSampleStore(t)
	ctx := context.Background()

	_ = adapter.Set(ctx, "test:sample:junk", []byte("{not json"))
	_ = adapter.Set(ctx, "test:sample:neg", []byte(`{"id":"neg","count":-5}`))

	for _, id := range []string{"junk", "neg", "missing"} {
		got, err := store.Load(ctx, id)
		if err != nil {
			t.Fatalf("load %s failed: %v", id, err)
		}
		if got != nil {
			t.Fatalf("expected %s to be treated as absent, got %+v", id, got)
		}
	}
}

func TestStore_DeleteAndExists(t *testing.T) {
	store, _ := newSampleStore(t)
	ctx := context.Background()

	_ = store.Save(ctx, "a", &sample{ID: "a"})

	exists, err := store.Exists(ctx, "a")
	if err != nil || !exists {
		t.Fatalf("expected exists, err=%v", err)
	}

	deleted, err := store.Delete(ctx, "a")
	if err != nil || !deleted {
		t.Fatalf("expected deleted, err=%v", err)
	}
	deleted, err = store.Delete(ctx, "a")
	if err != nil || deleted {
		t.Fatalf("second delete must report false, err=%v", err)
	}

	refreshed, err := store.RefreshTTL(ctx, "a")
	if err != nil || refreshed {
		t.Fatalf("refresh on missing record must report false, err=%v", err)
	}
}

func TestStore_CreateKeepsExistingRecord(t *testing.T) {
	store, adapter := newSampleStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "a", &sample{ID: "a", Count: 1})
	if err != nil || !created {
		t.Fatalf("expected create, created=%v err=%v", created, err)
	}
	created, err = store.Create(ctx, "a", &sample{ID: "a", Count: 2})
	if err != nil || created {
		t.Fatalf("second create must be refused, created=%v err=%v", created, err)
	}

	got, err := store.Load(ctx, "a")
	if err != nil || got == nil || got.Count != 1 {
		t.Fatalf("record was overwritten: %+v err=%v", got, err)
	}
	ttl, err := adapter.TTL(ctx, "test:sample:a")
	if err != nil || ttl <= 0 {
		t.Fatalf("expected ttl on created record, ttl=%d err=%v", ttl, err)
	}

	if _, err := store.Create(ctx, "b", &sample{ID: "b", Count: -1}); !cerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
