// Package store abstracts the recipe document collection: CRUD plus
// filtered, sorted, cursor-bounded queries. Implementations emit change
// events through a hooks.Emitter after each committed mutation.
package store

import (
	"context"
	"errors"

	"forkful/models"
)

var ErrNotFound = errors.New("recipe not found")

// Query describes one bounded read. Filters are a conjunction of equality
// predicates. Results are ordered by OrderBy (ties broken by document id in
// the same direction). At most one of After/Before is set:
//
//   - After: records strictly after the anchor in the base ordering, first
//     Limit of them.
//   - Before: records strictly before the anchor, the Limit closest to it,
//     returned in the base ordering (same ascending-within-page order as a
//     forward page).
//
// Numeric offsets are deliberately absent.
type Query struct {
	Filters map[string]interface{}
	OrderBy string
	Desc    bool
	Limit   int64
	After   *models.Recipe
	Before  *models.Recipe
}

type RecipeStore interface {
	Create(ctx context.Context, rec *models.Recipe) (string, error)
	Read(ctx context.Context, id string) (*models.Recipe, error)
	// Update replaces the whole document.
	Update(ctx context.Context, id string, rec *models.Recipe) error
	// Patch merges the given fields into the document, leaving the rest
	// untouched.
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]models.Recipe, error)
}

// sortValue extracts the value a query orders by. Sort fields outside this
// set are rejected before they reach the store.
func sortValue(field string, rec *models.Recipe) interface{} {
	switch field {
	case "name":
		return rec.Name
	case "category":
		return rec.Category
	default:
		return rec.PublishDate
	}
}

// SortableField reports whether field is a supported orderByField value.
func SortableField(field string) bool {
	switch field {
	case "publishDate", "name", "category":
		return true
	}
	return false
}
