package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps session ids to their ledgers for the HTTP layer. Each ledger
// remains single-owner; the registry only hands out the owner's handle and is
// itself safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	ledgers map[string]*Ledger
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[string]*Ledger)}
}

// Get returns the ledger for id, creating it (with a fresh uuid when id is
// empty) on first use. The second return value is the effective session id.
func (r *Registry) Get(id string) (*Ledger, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	l, ok := r.ledgers[id]
	if !ok {
		short := id
		if len(short) > 8 {
			short = short[:8]
		}
		l = NewLedger("Recipe Session " + short)
		r.ledgers[id] = l
	}
	return l, id
}

// Lookup returns the ledger for id without creating one.
func (r *Registry) Lookup(id string) (*Ledger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[id]
	return l, ok
}
