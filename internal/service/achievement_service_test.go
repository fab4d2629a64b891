package service

import (
	"achievements_tracker_backend/internal/docstore"
	"achievements_tracker_backend/internal/model"
	"achievements_tracker_backend/internal/repository"
	"achievements_tracker_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

var fixedNow = time.UnixMilli(1760000000123)

func strPtr(s string) *string { return &s }

func newTestService(store docstore.Store) *AchievementService {
	svc := NewAchievementService(repository.NewAchievementGroupRepository(store), DefaultMaxRetries)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func q1Request() model.CreateAchievementGroupRequest {
	return model.CreateAchievementGroupRequest{
		Name:         "Q1",
		Description:  strPtr(""),
		Achievements: []model.AchievementItemRequest{},
	}
}

func shipItem() model.AchievementItemRequest {
	return model.AchievementItemRequest{Name: "Ship v1", Description: strPtr(""), Size: model.SizeM, Type: model.TypeFeature}
}

func TestQ1Scenario(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected id to be assigned")
	}
	if created.CreatedAt != fixedNow.UnixMilli() {
		t.Errorf("createdAt: expected %d, got %d", fixedNow.UnixMilli(), created.CreatedAt)
	}
	if created.Achievements == nil || len(created.Achievements) != 0 {
		t.Errorf("expected empty achievements, got %#v", created.Achievements)
	}

	appended, err := svc.AppendItem(ctx, "u1", created.ID, shipItem())
	if err != nil {
		t.Fatalf("AppendItem failed: %v", err)
	}
	want := []model.AchievementItem{{Name: "Ship v1", Description: "", Size: model.SizeM, Type: model.TypeFeature}}
	if !reflect.DeepEqual(appended.Achievements, want) {
		t.Errorf("achievements: expected %+v, got %+v", want, appended.Achievements)
	}

	updated, err := svc.Update(ctx, "u1", created.ID, model.UpdateAchievementGroupRequest{Name: strPtr("Q1 Final")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Q1 Final" {
		t.Errorf("name: expected Q1 Final, got %s", updated.Name)
	}
	if !reflect.DeepEqual(updated.Achievements, want) {
		t.Errorf("achievements changed by name update: %+v", updated.Achievements)
	}

	deleted, err := svc.Delete(ctx, "u1", created.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := svc.Get(ctx, "u1", created.ID); !errors.Is(err, util.ErrAchievementNotFound) {
		t.Errorf("expected ErrAchievementNotFound after delete, got %v", err)
	}
}

func TestCreateAssignsFreshIdentity(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		g, err := svc.Create(ctx, "u1", q1Request())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[g.ID] {
			t.Fatalf("id %s returned twice", g.ID)
		}
		seen[g.ID] = true
	}
}

func TestCreateUsesCurrentTime(t *testing.T) {
	svc := NewAchievementService(repository.NewAchievementGroupRepository(docstore.NewMemoryStore()), DefaultMaxRetries)

	before := time.Now().UnixMilli()
	g, err := svc.Create(context.Background(), "u1", q1Request())
	after := time.Now().UnixMilli()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.CreatedAt < before || g.CreatedAt > after {
		t.Errorf("createdAt %d outside [%d, %d]", g.CreatedAt, before, after)
	}
}

func TestScopingIsolation(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, "u2", g.ID); !errors.Is(err, util.ErrAchievementNotFound) {
		t.Errorf("Get: expected ErrAchievementNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "u2", g.ID, model.UpdateAchievementGroupRequest{Name: strPtr("stolen")}); !errors.Is(err, util.ErrAchievementNotFound) {
		t.Errorf("Update: expected ErrAchievementNotFound, got %v", err)
	}
	if _, err := svc.AppendItem(ctx, "u2", g.ID, shipItem()); !errors.Is(err, util.ErrAchievementNotFound) {
		t.Errorf("AppendItem: expected ErrAchievementNotFound, got %v", err)
	}
	if deleted, err := svc.Delete(ctx, "u2", g.ID); err != nil || deleted {
		t.Errorf("Delete: deleted=%v err=%v", deleted, err)
	}

	list, err := svc.List(ctx, "u2")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("u2 sees %d groups", len(list))
	}

	still, err := svc.Get(ctx, "u1", g.ID)
	if err != nil {
		t.Fatalf("owner Get failed: %v", err)
	}
	if still.Name != "Q1" {
		t.Errorf("owner's group modified: %+v", still)
	}
}

func TestPartialUpdatePreservesUntouchedFields(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	req := q1Request()
	req.Description = strPtr("three months")
	req.Achievements = []model.AchievementItemRequest{shipItem(), shipItem()}
	g, err := svc.Create(ctx, "u1", req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cases := []struct {
		name  string
		patch model.UpdateAchievementGroupRequest
		check func(t *testing.T, got *model.AchievementGroup)
	}{
		{"name only", model.UpdateAchievementGroupRequest{Name: strPtr("renamed")}, func(t *testing.T, got *model.AchievementGroup) {
			if got.Name != "renamed" || got.Description != "three months" || len(got.Achievements) != 2 {
				t.Errorf("unexpected: %+v", got)
			}
		}},
		{"description to empty", model.UpdateAchievementGroupRequest{Description: strPtr("")}, func(t *testing.T, got *model.AchievementGroup) {
			if got.Name != "renamed" || got.Description != "" || len(got.Achievements) != 2 {
				t.Errorf("unexpected: %+v", got)
			}
		}},
		{"replace achievements", model.UpdateAchievementGroupRequest{Achievements: []model.AchievementItemRequest{}}, func(t *testing.T, got *model.AchievementGroup) {
			if got.Name != "renamed" || len(got.Achievements) != 0 {
				t.Errorf("unexpected: %+v", got)
			}
		}},
		{"empty patch", model.UpdateAchievementGroupRequest{}, func(t *testing.T, got *model.AchievementGroup) {
			if got.Name != "renamed" || got.Description != "" || len(got.Achievements) != 0 {
				t.Errorf("unexpected: %+v", got)
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Update(ctx, "u1", g.ID, tc.patch)
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if got.ID != g.ID || got.CreatedAt != g.CreatedAt {
				t.Errorf("identity changed: id %s -> %s, createdAt %d -> %d", g.ID, got.ID, g.CreatedAt, got.CreatedAt)
			}
			tc.check(t, got)

			stored, err := svc.Get(ctx, "u1", g.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !reflect.DeepEqual(stored, got) {
				t.Errorf("returned entity differs from stored one:\n got %+v\nstored %+v", got, stored)
			}
		})
	}
}

func TestUpdateNeverMutatesIdentityFields(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc.Now = func() time.Time { return fixedNow.Add(time.Hour) }
	got, err := svc.Update(ctx, "u1", g.ID, model.UpdateAchievementGroupRequest{Name: strPtr("x")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ID != g.ID || got.CreatedAt != g.CreatedAt {
		t.Errorf("identity changed: %+v vs %+v", got, g)
	}
}

func TestAppendPreservesOrderAndCount(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var want []model.AchievementItem
	sizes := []model.AchievementSize{model.SizeS, model.SizeM, model.SizeL, model.SizeM}
	for i, size := range sizes {
		item := model.AchievementItemRequest{Name: fmt.Sprintf("item-%d", i), Description: strPtr(""), Size: size, Type: model.TypeBug}
		got, err := svc.AppendItem(ctx, "u1", g.ID, item)
		if err != nil {
			t.Fatalf("AppendItem %d failed: %v", i, err)
		}
		want = append(want, item.Item())
		if !reflect.DeepEqual(got.Achievements, want) {
			t.Fatalf("after append %d: expected %+v, got %+v", i, want, got.Achievements)
		}
	}

	// duplicates are allowed
	dup, err := svc.AppendItem(ctx, "u1", g.ID, model.AchievementItemRequest{Name: "item-0", Description: strPtr(""), Size: model.SizeS, Type: model.TypeBug})
	if err != nil {
		t.Fatalf("AppendItem failed: %v", err)
	}
	if len(dup.Achievements) != len(sizes)+1 {
		t.Errorf("expected %d items, got %d", len(sizes)+1, len(dup.Achievements))
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := svc.Delete(ctx, "u1", g.ID)
	if err != nil || !first {
		t.Fatalf("first delete: %v %v", first, err)
	}
	second, err := svc.Delete(ctx, "u1", g.ID)
	if err != nil || second {
		t.Fatalf("second delete: %v %v", second, err)
	}
	if _, err := svc.Get(ctx, "u1", g.ID); !errors.Is(err, util.ErrAchievementNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestValidationGate(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	ctx := context.Background()

	existing, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	invalidCreates := map[string]model.CreateAchievementGroupRequest{
		"empty name":          {Name: "", Description: strPtr(""), Achievements: []model.AchievementItemRequest{}},
		"missing description": {Name: "Q2", Achievements: []model.AchievementItemRequest{}},
		"bad item": {Name: "Q2", Description: strPtr(""), Achievements: []model.AchievementItemRequest{
			{Name: "x", Description: strPtr(""), Size: "XXL", Type: model.TypeBug},
		}},
	}
	for name, req := range invalidCreates {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "u1", req); !errors.Is(err, util.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := svc.Update(ctx, "u1", existing.ID, model.UpdateAchievementGroupRequest{Name: strPtr("")}); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("Update with empty name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.AppendItem(ctx, "u1", existing.ID, model.AchievementItemRequest{Name: "x", Description: strPtr(""), Size: model.SizeS, Type: "Chore"}); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("AppendItem with bad type: expected ErrInvalidInput, got %v", err)
	}
	// validation runs before the lookup
	if _, err := svc.AppendItem(ctx, "u1", "missing", model.AchievementItemRequest{Name: ""}); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput before not-found, got %v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || !reflect.DeepEqual(list[0], *existing) {
		t.Errorf("store changed by rejected input: %+v", list)
	}
}

func TestConcurrentAppendsAllLand(t *testing.T) {
	svc := newTestService(docstore.NewMemoryStore())
	svc.MaxRetries = 100
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := model.AchievementItemRequest{Name: fmt.Sprintf("w%d", i), Description: strPtr(""), Size: model.SizeS, Type: model.TypeDevEx}
			if _, err := svc.AppendItem(ctx, "u1", g.ID, item); err != nil {
				t.Errorf("writer %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	final, err := svc.Get(ctx, "u1", g.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(final.Achievements) != writers {
		t.Fatalf("expected %d items, got %d", writers, len(final.Achievements))
	}
	names := map[string]bool{}
	for _, item := range final.Achievements {
		names[item.Name] = true
	}
	if len(names) != writers {
		t.Errorf("expected %d distinct items, got %d", writers, len(names))
	}
}

// conflictingStore fails the first n conditional updates with ErrConflict.
type conflictingStore struct {
	*docstore.MemoryStore
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (s *conflictingStore) Update(ctx context.Context, scope docstore.Scope, id string, fields docstore.Fields, expectedVersion int64) (*docstore.Document, error) {
	s.mu.Lock()
	s.calls++
	fail := s.conflicts != 0
	if s.conflicts > 0 {
		s.conflicts--
	}
	s.mu.Unlock()
	if fail {
		return nil, docstore.ErrConflict
	}
	return s.MemoryStore.Update(ctx, scope, id, fields, expectedVersion)
}

func TestConflictIsRetried(t *testing.T) {
	store := &conflictingStore{MemoryStore: docstore.NewMemoryStore(), conflicts: 2}
	svc := newTestService(store)
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := svc.AppendItem(ctx, "u1", g.ID, shipItem())
	if err != nil {
		t.Fatalf("AppendItem failed: %v", err)
	}
	if len(got.Achievements) != 1 {
		t.Errorf("expected exactly one item, got %d", len(got.Achievements))
	}
	if store.calls != 3 {
		t.Errorf("expected 3 update attempts, got %d", store.calls)
	}
}

func TestConflictRetriesExhausted(t *testing.T) {
	store := &conflictingStore{MemoryStore: docstore.NewMemoryStore(), conflicts: -1}
	svc := newTestService(store)
	svc.MaxRetries = 3
	ctx := context.Background()

	g, err := svc.Create(ctx, "u1", q1Request())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err = svc.Update(ctx, "u1", g.ID, model.UpdateAchievementGroupRequest{Name: strPtr("x")})
	if !errors.Is(err, util.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if store.calls != 4 {
		t.Errorf("expected 4 attempts, got %d", store.calls)
	}

	stored, err := svc.Get(ctx, "u1", g.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Name != "Q1" {
		t.Errorf("failed update leaked: %+v", stored)
	}
}

// failingStore returns err from every call.
type failingStore struct {
	*docstore.MemoryStore
	err error
}

func (s failingStore) Get(context.Context, docstore.Scope, string) (*docstore.Document, error) {
	return nil, s.err
}

func (s failingStore) List(context.Context, docstore.Scope) ([]docstore.Document, error) {
	return nil, s.err
}

func (s failingStore) Add(context.Context, docstore.Scope, docstore.Fields) (*docstore.Document, error) {
	return nil, s.err
}

func (s failingStore) Delete(context.Context, docstore.Scope, string) (bool, error) {
	return false, s.err
}

func TestStoreFailuresPropagate(t *testing.T) {
	unavailable := errors.New("store unavailable")
	svc := newTestService(failingStore{MemoryStore: docstore.NewMemoryStore(), err: unavailable})
	ctx := context.Background()

	if _, err := svc.List(ctx, "u1"); !errors.Is(err, unavailable) {
		t.Errorf("List: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", "x"); !errors.Is(err, unavailable) {
		t.Errorf("Get: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", q1Request()); !errors.Is(err, unavailable) {
		t.Errorf("Create: %v", err)
	}
	if _, err := svc.AppendItem(ctx, "u1", "x", shipItem()); !errors.Is(err, unavailable) {
		t.Errorf("AppendItem: %v", err)
	}
	if _, err := svc.Delete(ctx, "u1", "x"); !errors.Is(err, unavailable) {
		t.Errorf("Delete: %v", err)
	}
}

type slowStore struct {
	*docstore.MemoryStore
}

func (s slowStore) Get(ctx context.Context, _ docstore.Scope, _ string) (*docstore.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStoreTimeoutIsNotNotFound(t *testing.T) {
	store := docstore.Instrument(slowStore{docstore.NewMemoryStore()}, 10*time.Millisecond, nil)
	svc := newTestService(store)

	_, err := svc.Get(context.Background(), "u1", "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, util.ErrAchievementNotFound) {
		t.Error("timeout reported as not found")
	}
}
