package kv

import (
	"context"
	"errors"
	"testing"
)

// storeImpls returns one of each Store implementation for shared tests.
func storeImpls(t *testing.T) map[string]Store {
	t.Helper()
	b, err := NewBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("badger in-memory: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"badger": b,
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			key := Key{"speaker", "global", "next_id"}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			if err := s.Set(ctx, key, []byte("7")); err != nil {
				t.Fatalf("set: %v", err)
			}
			v, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(v) != "7" {
				t.Errorf("expected 7, got %q", v)
			}

			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			// Deleting a missing key is not an error.
			if err := s.Delete(ctx, key); err != nil {
				t.Errorf("delete missing: %v", err)
			}
		})
	}
}

func TestStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			s.Set(ctx, Key{"speaker", "recording", "a"}, []byte("1"))
			s.Set(ctx, Key{"speaker", "recording", "b"}, []byte("2"))
			s.Set(ctx, Key{"speaker", "global", "signatures"}, []byte("x"))

			entries, err := s.List(ctx, Key{"speaker", "recording"})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if entries[0].Key.String() != "speaker:recording:a" {
				t.Errorf("unexpected first key %s", entries[0].Key)
			}
			if string(entries[1].Value) != "2" {
				t.Errorf("unexpected second value %q", entries[1].Value)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			key := Key{"k"}
			s.Set(ctx, key, []byte("old"))
			s.Set(ctx, key, []byte("new"))
			v, err := s.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(v) != "new" {
				t.Errorf("expected new, got %q", v)
			}
		})
	}
}
