// Package hooks delivers record-change events to registered handlers,
// mirroring the after-commit triggers a managed document database would fire.
package hooks

import (
	"log"
	"sync"

	"forkful/models"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes a committed mutation on the recipe collection. Before is
// nil for creates, After is nil for deletes.
type Event struct {
	Op     Op
	ID     string
	Before *models.Recipe
	After  *models.Recipe
}

type Handler func(Event)

// Emitter fans one event out to every subscribed handler. Delivery is
// at-least-once: a handler that panics is logged and the rest still run, so
// handlers must tolerate being called again for the same logical change.
type Emitter struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) Subscribe(h Handler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, h)
	e.mu.Unlock()
}

func (e *Emitter) Emit(ev Event) {
	if e == nil {
		return
	}
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("hooks: handler panic on %s %s: %v", ev.Op, ev.ID, r)
				}
			}()
			h(ev)
		}()
	}
}
