package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateThenGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "u-1", "f-1", "key-1", "msg-1", 200, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" || rec.MessageID != "msg-1" || rec.Status != 200 {
		t.Fatalf("record mismatch: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u-1", "f-1", "key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MessageID != "msg-1" {
		t.Fatalf("replay record mismatch: %+v", got)
	}
}

func TestIdempotency_DuplicateTuple(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u-1", "f-1", "key-1", "msg-1", 200, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u-1", "f-1", "key-1", "msg-2", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same key under a different friend is a distinct tuple.
	if _, err := CreateIdempotency(ctx, db, "u-1", "f-2", "key-1", "msg-3", 200, time.Hour); err != nil {
		t.Fatalf("different friend should not collide: %v", err)
	}
}

func TestIdempotency_ExpiredAndBlankFriend(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u-1", "f-1", "key-1", "msg-1", 200, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	// A record whose TTL has elapsed no longer replays.
	later := time.Now().UTC().Add(time.Minute)
	if _, err := GetIdempotency(ctx, db, "u-1", "f-1", "key-1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should be ErrNotFound, got %v", err)
	}

	// Blank friend scope disables the lookup entirely.
	if _, err := GetIdempotency(ctx, db, "u-1", "  ", "key-1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank friend should be ErrNotFound, got %v", err)
	}
}
