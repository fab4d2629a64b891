package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

func rawField(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	return data
}

func stringField(t *testing.T, doc *Document, key string) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(doc.Fields[key], &s); err != nil {
		t.Fatalf("field %s: %v (raw=%s)", key, err, doc.Fields[key])
	}
	return s
}

// runStoreConformance exercises the Store contract. Every backend test calls it with a
// fresh, empty store.
func runStoreConformance(t *testing.T, store Store) {
	ctx := context.Background()
	scopeA := Join("users", "alice", "achievements")
	scopeB := Join("users", "bob", "achievements")

	t.Run("Add assigns id and version 1", func(t *testing.T) {
		doc, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "first")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if doc.ID == "" {
			t.Fatal("expected generated id")
		}
		if doc.Version != 1 {
			t.Errorf("version: expected 1, got %d", doc.Version)
		}

		second, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "second")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if second.ID == doc.ID {
			t.Errorf("expected distinct ids, both %s", doc.ID)
		}
	})

	t.Run("Get round-trips fields", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{
			"name":      rawField(t, "Q1"),
			"createdAt": rawField(t, int64(1760000000123)),
			"items":     rawField(t, []map[string]string{{"name": "a"}, {"name": "b"}}),
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		got, err := store.Get(ctx, scopeA, created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stringField(t, got, "name") != "Q1" {
			t.Errorf("name mismatch: %s", got.Fields["name"])
		}
		var createdAt int64
		if err := json.Unmarshal(got.Fields["createdAt"], &createdAt); err != nil {
			t.Fatalf("createdAt: %v", err)
		}
		if createdAt != 1760000000123 {
			t.Errorf("createdAt: expected 1760000000123, got %d", createdAt)
		}
		var items []map[string]string
		if err := json.Unmarshal(got.Fields["items"], &items); err != nil {
			t.Fatalf("items: %v", err)
		}
		if len(items) != 2 || items[0]["name"] != "a" || items[1]["name"] != "b" {
			t.Errorf("items mismatch: %v", items)
		}
	})

	t.Run("Get is scoped", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "private")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if _, err := store.Get(ctx, scopeB, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound from other scope, got %v", err)
		}
		if _, err := store.Get(ctx, scopeA, "missing-id"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing id, got %v", err)
		}
	})

	t.Run("List returns only scope documents", func(t *testing.T) {
		scope := Join("users", "list-user", "achievements")
		empty, err := store.List(ctx, scope)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected empty scope, got %d docs", len(empty))
		}

		ids := map[string]bool{}
		for _, name := range []string{"one", "two", "three"} {
			doc, err := store.Add(ctx, scope, Fields{"name": rawField(t, name)})
			if err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			ids[doc.ID] = true
		}

		docs, err := store.List(ctx, scope)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("expected 3 docs, got %d", len(docs))
		}
		for _, doc := range docs {
			if !ids[doc.ID] {
				t.Errorf("unexpected doc %s in scope", doc.ID)
			}
		}
	})

	t.Run("Update merges fields and bumps version", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{
			"name":        rawField(t, "before"),
			"description": rawField(t, "kept"),
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		updated, err := store.Update(ctx, scopeA, created.ID, Fields{"name": rawField(t, "after")}, created.Version)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Version != created.Version+1 {
			t.Errorf("version: expected %d, got %d", created.Version+1, updated.Version)
		}
		if stringField(t, updated, "name") != "after" {
			t.Errorf("name not merged: %s", updated.Fields["name"])
		}
		if stringField(t, updated, "description") != "kept" {
			t.Errorf("description lost: %s", updated.Fields["description"])
		}

		got, err := store.Get(ctx, scopeA, created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Version != updated.Version || stringField(t, got, "name") != "after" {
			t.Errorf("stored document not updated: %+v", got)
		}
	})

	t.Run("Update with stale version conflicts", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "v1")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if _, err := store.Update(ctx, scopeA, created.ID, Fields{"name": rawField(t, "v2")}, created.Version); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		_, err = store.Update(ctx, scopeA, created.ID, Fields{"name": rawField(t, "stale")}, created.Version)
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		got, err := store.Get(ctx, scopeA, created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stringField(t, got, "name") != "v2" {
			t.Errorf("stale write applied: %s", got.Fields["name"])
		}
	})

	t.Run("Update missing document", func(t *testing.T) {
		_, err := store.Update(ctx, scopeA, "missing-id", Fields{"name": rawField(t, "x")}, AnyVersion)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Set preserves id", func(t *testing.T) {
		doc, err := store.Set(ctx, scopeB, "fixed-id", Fields{"name": rawField(t, "copied")})
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if doc.ID != "fixed-id" || doc.Version != 1 {
			t.Errorf("unexpected document: %+v", doc)
		}
		again, err := store.Set(ctx, scopeB, "fixed-id", Fields{"name": rawField(t, "replaced")})
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if again.Version != 2 {
			t.Errorf("version: expected 2, got %d", again.Version)
		}
		got, err := store.Get(ctx, scopeB, "fixed-id")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stringField(t, got, "name") != "replaced" {
			t.Errorf("name: %s", got.Fields["name"])
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "doomed")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		deleted, err := store.Delete(ctx, scopeB, created.ID)
		if err != nil || deleted {
			t.Fatalf("delete from other scope: deleted=%v err=%v", deleted, err)
		}
		deleted, err = store.Delete(ctx, scopeA, created.ID)
		if err != nil || !deleted {
			t.Fatalf("first delete: deleted=%v err=%v", deleted, err)
		}
		deleted, err = store.Delete(ctx, scopeA, created.ID)
		if err != nil || deleted {
			t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
		}
		if _, err := store.Get(ctx, scopeA, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("concurrent conditional updates admit one winner per version", func(t *testing.T) {
		created, err := store.Add(ctx, scopeA, Fields{"name": rawField(t, "race")})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		const writers = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.Update(ctx, scopeA, created.ID, Fields{"name": rawField(t, i)}, created.Version)
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				} else if !errors.Is(err, ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()
		if wins != 1 {
			t.Errorf("expected exactly one successful writer, got %d", wins)
		}
	})
}
