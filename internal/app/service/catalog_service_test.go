package service

import (
	"context"
	"sync"
	"testing"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBehaviorRepo struct {
	mu        sync.Mutex
	behaviors map[string]*model.Behavior
}

func newFakeBehaviorRepo() *fakeBehaviorRepo {
	return &fakeBehaviorRepo{behaviors: make(map[string]*model.Behavior)}
}

func (r *fakeBehaviorRepo) Create(_ context.Context, b *model.Behavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.behaviors {
		if existing.Slug == b.Slug {
			return common.ErrConflict
		}
	}
	c := *b
	r.behaviors[b.ID] = &c
	return nil
}

func (r *fakeBehaviorRepo) FindByID(_ context.Context, id string) (*model.Behavior, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.behaviors[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeBehaviorRepo) FindBySlug(_ context.Context, slug string) (*model.Behavior, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.behaviors {
		if b.Slug == slug {
			c := *b
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeBehaviorRepo) List(_ context.Context, category model.BehaviorCategory) ([]model.Behavior, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Behavior
	for _, b := range r.behaviors {
		if category == "" || b.Category == category {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBehaviorRepo) Update(_ context.Context, b *model.Behavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.behaviors[b.ID]; !ok {
		return common.ErrNotFound
	}
	c := *b
	r.behaviors[b.ID] = &c
	return nil
}

func (r *fakeBehaviorRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.behaviors[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.behaviors, id)
	return nil
}

type resourceKey struct {
	kind model.ResourceKind
	id   string
}

type fakeResourceRepo struct {
	mu        sync.Mutex
	resources map[resourceKey]*model.Resource
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{resources: make(map[resourceKey]*model.Resource)}
}

func (r *fakeResourceRepo) Create(_ context.Context, kind model.ResourceKind, res *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *res
	r.resources[resourceKey{kind, res.ID}] = &c
	return nil
}

func (r *fakeResourceRepo) FindByID(_ context.Context, kind model.ResourceKind, id string) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.resources[resourceKey{kind, id}]; ok {
		c := *res
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeResourceRepo) List(_ context.Context, kind model.ResourceKind) ([]model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Resource
	for key, res := range r.resources {
		if key.kind == kind {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResourceRepo) Update(_ context.Context, kind model.ResourceKind, res *model.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[resourceKey{kind, res.ID}]; !ok {
		return common.ErrNotFound
	}
	c := *res
	r.resources[resourceKey{kind, res.ID}] = &c
	return nil
}

func (r *fakeResourceRepo) Delete(_ context.Context, kind model.ResourceKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[resourceKey{kind, id}]; !ok {
		return common.ErrNotFound
	}
	delete(r.resources, resourceKey{kind, id})
	return nil
}

func TestCreateBehaviorBuildsSlug(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeBehaviorRepo(), newFakeResourceRepo())

	behavior, err := svc.CreateBehavior(context.Background(), "user-1", CreateBehaviorRequest{
		Name:             "Calling Out in Class",
		Category:         "problem_behavior",
		Type:             "minor",
		ShortDescription: "Speaks without raising a hand",
	})
	require.NoError(t, err)
	assert.Equal(t, "calling-out-in-class", behavior.Slug)
	assert.Equal(t, model.CategoryProblemBehavior, behavior.Category)
	assert.Equal(t, "user-1", behavior.CreatedByID)
}

func TestCreateBehaviorCategoryTypePairing(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeBehaviorRepo(), newFakeResourceRepo())

	tests := []struct {
		category string
		typ      string
		valid    bool
	}{
		{"problem_behavior", "major", true},
		{"problem_behavior", "minor", true},
		{"problem_behavior", "general", true},
		{"antecedent_motivation", "get", true},
		{"antecedent_motivation", "avoid", true},
		{"problem_behavior", "get", false},
		{"antecedent_motivation", "major", false},
		{"nonsense", "major", false},
		{"problem_behavior", "nonsense", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.category+"/"+tt.typ, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateBehavior(context.Background(), "user-1", CreateBehaviorRequest{
				Name:             "B " + tt.category + tt.typ,
				Category:         tt.category,
				Type:             tt.typ,
				ShortDescription: "desc",
			})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrBadRequest)
			}
		})
	}
}

func TestUpdateBehaviorRevalidatesPairing(t *testing.T) {
	t.Parallel()
	repo := newFakeBehaviorRepo()
	svc := NewCatalogService(repo, newFakeResourceRepo())

	behavior, err := svc.CreateBehavior(context.Background(), "user-1", CreateBehaviorRequest{
		Name:             "Out of Seat",
		Category:         "problem_behavior",
		Type:             "minor",
		ShortDescription: "Leaves assigned area",
	})
	require.NoError(t, err)

	// Changing category without a compatible type must fail.
	category := "antecedent_motivation"
	_, err = svc.UpdateBehavior(context.Background(), behavior.ID, "user-2", UpdateBehaviorRequest{
		Category: &category,
	})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	// Both together succeed, and the slug tracks the name.
	typ := "avoid"
	name := "Task Avoidance"
	updated, err := svc.UpdateBehavior(context.Background(), behavior.ID, "user-2", UpdateBehaviorRequest{
		Category: &category,
		Type:     &typ,
		Name:     &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "task-avoidance", updated.Slug)
	require.NotNil(t, updated.UpdatedByID)
	assert.Equal(t, "user-2", *updated.UpdatedByID)
}

func TestListBehaviorsRejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeBehaviorRepo(), newFakeResourceRepo())

	_, err := svc.ListBehaviors(context.Background(), "nonsense")
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.ListBehaviors(context.Background(), "")
	assert.NoError(t, err)
}

func TestResourceCRUDAcrossKinds(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeBehaviorRepo(), newFakeResourceRepo())

	kinds := []model.ResourceKind{model.KindStrategy, model.KindSupport, model.KindAccommodation}
	for _, kind := range kinds {
		created, err := svc.CreateResource(context.Background(), kind, "user-1", CreateResourceRequest{
			Name:             "First Then Board",
			ShortDescription: "Visual sequencing aid",
		})
		require.NoError(t, err)
		assert.Equal(t, "first-then-board", created.Slug)

		got, err := svc.GetResource(context.Background(), kind, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	}

	// The same ID does not bleed across catalogs.
	strategies, err := svc.ListResources(context.Background(), model.KindStrategy)
	require.NoError(t, err)
	assert.Len(t, strategies, 1)
}

func TestDeleteResourceNotFound(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeBehaviorRepo(), newFakeResourceRepo())

	err := svc.DeleteResource(context.Background(), model.KindSupport, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
