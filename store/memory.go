package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"forkful/hooks"
	"forkful/models"
)

// MemoryStore is a thread-safe in-memory RecipeStore with the same query
// and hook semantics as the Mongo implementation. Tests use it as the
// substitute behind the interface.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]models.Recipe
	emitter *hooks.Emitter
}

func NewMemory(emitter *hooks.Emitter) *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]models.Recipe),
		emitter: emitter,
	}
}

func (s *MemoryStore) Create(ctx context.Context, rec *models.Recipe) (string, error) {
	rec.ID = primitive.NewObjectID()

	s.mu.Lock()
	s.docs[rec.ID.Hex()] = *rec
	s.mu.Unlock()

	after := *rec
	s.emitter.Emit(hooks.Event{Op: hooks.OpCreate, ID: rec.ID.Hex(), After: &after})
	return rec.ID.Hex(), nil
}

func (s *MemoryStore) Read(ctx context.Context, id string) (*models.Recipe, error) {
	s.mu.RLock()
	rec, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, rec *models.Recipe) error {
	s.mu.Lock()
	old, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	rec.ID = old.ID
	s.docs[id] = *rec
	s.mu.Unlock()

	before, after := old, *rec
	s.emitter.Emit(hooks.Event{Op: hooks.OpUpdate, ID: id, Before: &before, After: &after})
	return nil
}

func (s *MemoryStore) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	old, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	rec := old
	for k, v := range fields {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				rec.Name = s
			}
		case "category":
			if s, ok := v.(string); ok {
				rec.Category = s
			}
		case "directions":
			if s, ok := v.(string); ok {
				rec.Directions = s
			}
		case "publishDate":
			if n, ok := v.(int64); ok {
				rec.PublishDate = n
			}
		case "isPublished":
			if b, ok := v.(bool); ok {
				rec.IsPublished = b
			}
		case "imageUrl":
			if s, ok := v.(string); ok {
				rec.ImageURL = s
			}
		case "ingredients":
			if xs, ok := v.([]string); ok {
				rec.Ingredients = xs
			}
		}
	}
	s.docs[id] = rec
	s.mu.Unlock()

	before, after := old, rec
	s.emitter.Emit(hooks.Event{Op: hooks.OpUpdate, ID: id, Before: &before, After: &after})
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	old, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.docs, id)
	s.mu.Unlock()

	before := old
	s.emitter.Emit(hooks.Event{Op: hooks.OpDelete, ID: id, Before: &before})
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]models.Recipe, error) {
	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "publishDate"
	}

	s.mu.RLock()
	matched := make([]models.Recipe, 0, len(s.docs))
	for _, rec := range s.docs {
		if matchesFilters(&rec, q.Filters) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	asc := func(i, j int) bool { return recipeLess(orderBy, &matched[i], &matched[j]) }
	if q.Desc {
		sort.Slice(matched, func(i, j int) bool { return asc(j, i) })
	} else {
		sort.Slice(matched, asc)
	}

	switch {
	case q.After != nil:
		matched = cutAfter(orderBy, matched, q.After, q.Desc)
		matched = head(matched, q.Limit)
	case q.Before != nil:
		matched = cutBefore(orderBy, matched, q.Before, q.Desc)
		matched = tail(matched, q.Limit)
	default:
		matched = head(matched, q.Limit)
	}
	return matched, nil
}

func matchesFilters(rec *models.Recipe, filters map[string]interface{}) bool {
	for k, v := range filters {
		switch k {
		case "category":
			if rec.Category != v {
				return false
			}
		case "isPublished":
			if rec.IsPublished != v {
				return false
			}
		case "name":
			if rec.Name != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// recipeLess orders by the sort field ascending, ties broken by id.
func recipeLess(orderBy string, a, b *models.Recipe) bool {
	av, bv := sortValue(orderBy, a), sortValue(orderBy, b)
	switch x := av.(type) {
	case int64:
		y := bv.(int64)
		if x != y {
			return x < y
		}
	case string:
		y := bv.(string)
		if x != y {
			return x < y
		}
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// cutAfter drops everything up to and including the anchor's position in
// the already-sorted slice.
func cutAfter(orderBy string, recipes []models.Recipe, anchor *models.Recipe, desc bool) []models.Recipe {
	for i := range recipes {
		if afterAnchor(orderBy, &recipes[i], anchor, desc) {
			return recipes[i:]
		}
	}
	return nil
}

// cutBefore keeps everything strictly before the anchor's position.
func cutBefore(orderBy string, recipes []models.Recipe, anchor *models.Recipe, desc bool) []models.Recipe {
	for i := range recipes {
		if !beforeAnchor(orderBy, &recipes[i], anchor, desc) {
			return recipes[:i]
		}
	}
	return recipes
}

func afterAnchor(orderBy string, rec, anchor *models.Recipe, desc bool) bool {
	if desc {
		return recipeLess(orderBy, rec, anchor)
	}
	return recipeLess(orderBy, anchor, rec)
}

func beforeAnchor(orderBy string, rec, anchor *models.Recipe, desc bool) bool {
	if desc {
		return recipeLess(orderBy, anchor, rec)
	}
	return recipeLess(orderBy, rec, anchor)
}

func head(recipes []models.Recipe, limit int64) []models.Recipe {
	if limit > 0 && int64(len(recipes)) > limit {
		return recipes[:limit]
	}
	return recipes
}

func tail(recipes []models.Recipe, limit int64) []models.Recipe {
	if limit > 0 && int64(len(recipes)) > limit {
		return recipes[int64(len(recipes))-limit:]
	}
	return recipes
}
