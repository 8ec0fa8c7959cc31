// Package pagination turns page requests into cursor-bounded store queries.
// Cursors are record ids anchoring a position in a specific (filter, sort)
// ordering; numeric offsets never reach the store.
package pagination

import (
	"context"
	"errors"
	"log"

	"forkful/models"
	"forkful/store"
)

type Mode string

const (
	// ModeAfter returns the page following the anchor record.
	ModeAfter Mode = "after"
	// ModeBefore returns the page preceding the anchor record, in the same
	// ascending-within-page order as a forward page.
	ModeBefore Mode = "before"
)

const DefaultPerPage = 10

type Request struct {
	Filters map[string]interface{}
	OrderBy string
	Desc    bool
	PerPage int64
	Cursor  string
	Mode    Mode
}

type Paginator struct {
	store store.RecipeStore
}

func New(s store.RecipeStore) *Paginator {
	return &Paginator{store: s}
}

// Page fetches one page. A cursor whose record has been deleted degrades to
// an unanchored first page rather than erroring: the cursor only has
// meaning relative to a record that still exists.
func (p *Paginator) Page(ctx context.Context, req Request) ([]models.Recipe, error) {
	q := store.Query{
		Filters: req.Filters,
		OrderBy: req.OrderBy,
		Desc:    req.Desc,
		Limit:   req.PerPage,
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPerPage
	}

	if req.Cursor != "" {
		anchor, err := p.store.Read(ctx, req.Cursor)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if anchor == nil {
			log.Printf("pagination: cursor %s no longer exists, serving unanchored page", req.Cursor)
		} else if req.Mode == ModeBefore {
			q.Before = anchor
		} else {
			q.After = anchor
		}
	}

	recipes, err := p.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// PageByNumber serves legacy clients that send a 1-based page number. It
// walks forward page by page via cursors; the store never sees a skip.
func (p *Paginator) PageByNumber(ctx context.Context, req Request, pageNumber int) ([]models.Recipe, error) {
	req.Cursor = ""
	req.Mode = ModeAfter

	recipes, err := p.Page(ctx, req)
	if err != nil {
		return nil, err
	}

	for page := 1; page < pageNumber; page++ {
		if len(recipes) == 0 {
			break
		}
		req.Cursor = recipes[len(recipes)-1].ID.Hex()
		recipes, err = p.Page(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	return recipes, nil
}
