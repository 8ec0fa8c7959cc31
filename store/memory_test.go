package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forkful/hooks"
	"forkful/models"
)

func newRecipe(name, category string, publishDate int64, published bool) *models.Recipe {
	return &models.Recipe{
		Name:        name,
		Category:    category,
		Directions:  "mix and bake",
		PublishDate: publishDate,
		IsPublished: published,
		Ingredients: []string{"flour"},
		ImageURL:    "/static/uploads/recipes/x.jpg",
	}
}

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(hooks.NewEmitter())

	id, err := s.Create(ctx, newRecipe("Pancakes", "eggsAndBreakfast", 100, true))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", rec.Name)

	rec.Name = "Crepes"
	require.NoError(t, s.Update(ctx, id, rec))

	rec, err = s.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", rec.Name)

	require.NoError(t, s.Patch(ctx, id, map[string]interface{}{"isPublished": false}))
	rec, err = s.Read(ctx, id)
	require.NoError(t, err)
	assert.False(t, rec.IsPublished)
	assert.Equal(t, "Crepes", rec.Name, "patch must not touch other fields")

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Read(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(hooks.NewEmitter())

	_, err := s.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "missing", newRecipe("x", "vegetables", 1, false)), ErrNotFound)
	assert.ErrorIs(t, s.Patch(ctx, "missing", map[string]interface{}{"isPublished": true}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
}

func TestMemoryEmitsHooks(t *testing.T) {
	ctx := context.Background()
	emitter := hooks.NewEmitter()
	s := NewMemory(emitter)

	var ops []hooks.Op
	emitter.Subscribe(func(ev hooks.Event) { ops = append(ops, ev.Op) })

	id, err := s.Create(ctx, newRecipe("Soup", "vegetables", 100, false))
	require.NoError(t, err)

	rec, err := s.Read(ctx, id)
	require.NoError(t, err)
	rec.IsPublished = true
	require.NoError(t, s.Update(ctx, id, rec))
	require.NoError(t, s.Delete(ctx, id))

	assert.Equal(t, []hooks.Op{hooks.OpCreate, hooks.OpUpdate, hooks.OpDelete}, ops)
}

func TestMemoryQueryFiltersAndSort(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(hooks.NewEmitter())

	for i, tc := range []struct {
		name      string
		category  string
		date      int64
		published bool
	}{
		{"Bread", "breadsSandwichesAndPizza", 300, true},
		{"Omelette", "eggsAndBreakfast", 100, true},
		{"Ratatouille", "vegetables", 200, false},
	} {
		_, err := s.Create(ctx, newRecipe(tc.name, tc.category, tc.date, tc.published))
		require.NoError(t, err, "create %d", i)
	}

	published, err := s.Query(ctx, Query{Filters: map[string]interface{}{"isPublished": true}})
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "Omelette", published[0].Name, "default sort is publishDate ascending")
	assert.Equal(t, "Bread", published[1].Name)

	byNameDesc, err := s.Query(ctx, Query{OrderBy: "name", Desc: true})
	require.NoError(t, err)
	require.Len(t, byNameDesc, 3)
	assert.Equal(t, "Ratatouille", byNameDesc[0].Name)

	limited, err := s.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
