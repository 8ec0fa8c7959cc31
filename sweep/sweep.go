// Package sweep promotes recipes whose publish date has elapsed. It is the
// only path that flips isPublished based on time passing; writes from
// clients compute the same comparison at submission time.
package sweep

import (
	"context"
	"log"
	"time"

	"forkful/store"
)

type Sweeper struct {
	store    store.RecipeStore
	interval time.Duration
	now      func() time.Time
}

func New(s store.RecipeStore, interval time.Duration) *Sweeper {
	return &Sweeper{store: s, interval: interval, now: time.Now}
}

// Run executes the sweep on a fixed schedule until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				log.Printf("sweep: %v", err)
			}
		}
	}
}

// RunOnce publishes every unpublished recipe whose publishDate is in the
// past, touching nothing but the isPublished flag. One record's failure
// does not abort the rest of the batch.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	unpublished, err := s.store.Query(ctx, store.Query{
		Filters: map[string]interface{}{"isPublished": false},
		OrderBy: "publishDate",
	})
	if err != nil {
		return 0, err
	}

	now := s.now().UnixMilli()
	published := 0
	for _, rec := range unpublished {
		if rec.PublishDate > now {
			continue
		}

		id := rec.ID.Hex()
		if err := s.store.Patch(ctx, id, map[string]interface{}{"isPublished": true}); err != nil {
			log.Printf("sweep: publish recipe %s: %v", id, err)
			continue
		}
		log.Printf("sweep: recipe %q (%s) is now published", rec.Name, id)
		published++
	}
	return published, nil
}
