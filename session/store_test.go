package session

import (
	"sync"
	"testing"
	"time"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	id, ok := store.Create("u1")
	if !ok || id == "" {
		t.Fatalf("expected non-empty session id, got %q ok=%v", id, ok)
	}

	rec, ok := store.Lookup(id)
	if !ok {
		t.Fatal("expected lookup to find the new session")
	}
	if rec.UserID != "u1" {
		t.Fatalf("expected user u1, got %q", rec.UserID)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be stamped")
	}

	if !store.Delete(id) {
		t.Fatal("expected first delete to report removal")
	}
	if _, ok := store.Lookup(id); ok {
		t.Fatal("expected lookup after delete to miss")
	}
	if store.Delete(id) {
		t.Fatal("expected second delete to report nothing removed")
	}
}

func TestStoreRejectsEmptyUserID(t *testing.T) {
	store := NewStore()
	if id, ok := store.Create(""); ok || id != "" {
		t.Fatalf("expected rejection, got %q ok=%v", id, ok)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", store.Len())
	}
}

func TestStoreUnknownIDs(t *testing.T) {
	store := NewStore()
	if _, ok := store.Lookup(""); ok {
		t.Fatal("empty id must not resolve")
	}
	if _, ok := store.Lookup("missing"); ok {
		t.Fatal("unknown id must not resolve")
	}
	if store.Delete("") || store.Delete("missing") {
		t.Fatal("deleting unknown ids must report false")
	}
}

func TestStoreCreateAtUsesGivenTime(t *testing.T) {
	store := NewStore()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	id, ok := store.CreateAt("u1", at)
	if !ok {
		t.Fatal("expected create to succeed")
	}
	rec, _ := store.Lookup(id)
	if !rec.CreatedAt.Equal(at) {
		t.Fatalf("expected createdAt %v, got %v", at, rec.CreatedAt)
	}
}

func TestStoreConcurrentCreateDelete(t *testing.T) {
	store := NewStore()

	const workers = 16
	const perWorker = 200

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, ok := store.Create("u")
				if !ok {
					t.Error("create failed")
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = struct{}{}
	}
	if store.Len() != workers*perWorker {
		t.Fatalf("expected %d records, got %d", workers*perWorker, store.Len())
	}

	var deleted sync.WaitGroup
	var mu sync.Mutex
	removed := 0
	for id := range seen {
		deleted.Add(2)
		for k := 0; k < 2; k++ {
			go func(id string) {
				defer deleted.Done()
				if store.Delete(id) {
					mu.Lock()
					removed++
					mu.Unlock()
				}
			}(id)
		}
	}
	deleted.Wait()

	if removed != len(seen) {
		t.Fatalf("expected each record removed exactly once, got %d removals for %d records", removed, len(seen))
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestNewRecordGeneratesUUIDv4(t *testing.T) {
	rec, err := NewRecord("u1", time.Now())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if len(rec.SessionID) != 36 || rec.SessionID[14] != '4' {
		t.Fatalf("expected a v4 uuid, got %q", rec.SessionID)
	}

	if _, err := NewRecord("", time.Now()); err != ErrInvalidUserID {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestFilterMatch(t *testing.T) {
	rec := Record{SessionID: "s1", UserID: "u1"}

	cases := []struct {
		filter Filter
		want   bool
	}{
		{Filter{}, true},
		{Filter{SessionID: "s1"}, true},
		{Filter{UserID: "u1"}, true},
		{Filter{SessionID: "s1", UserID: "u1"}, true},
		{Filter{SessionID: "s2"}, false},
		{Filter{SessionID: "s1", UserID: "u2"}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Match(rec); got != tc.want {
			t.Fatalf("%+v.Match(%+v) = %v, want %v", tc.filter, rec, got, tc.want)
		}
	}
}
