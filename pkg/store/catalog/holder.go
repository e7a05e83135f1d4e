package catalog

import (
	"sync/atomic"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

// Holder publishes catalog snapshots. Readers take one snapshot per operation
// and never block; Replace swaps the whole snapshot in a single store.
type Holder struct {
	provider string
	current  atomic.Pointer[domain.Catalog]
}

func NewHolder(provider string, initial *domain.Catalog) *Holder {
	h := &Holder{provider: provider}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

func (h *Holder) Provider() string {
	return h.provider
}

// Current returns the latest published snapshot, or nil if none was published.
func (h *Holder) Current() *domain.Catalog {
	return h.current.Load()
}

func (h *Holder) Replace(c *domain.Catalog) {
	h.current.Store(c)
}
