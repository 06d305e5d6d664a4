package ledger

import (
	"sync"

	"github.com/gradecoin/network/pkg/models"
)

// Head holds one network's single head-of-chain cell. Prior blocks are
// never retained in memory once superseded — only on disk.
type Head struct {
	mu    sync.RWMutex
	block models.Block
}

// NewHead starts a network at the fixed genesis block.
func NewHead() *Head {
	return &Head{block: models.Genesis()}
}

// Current returns a copy of the current head block.
func (h *Head) Current() models.Block {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.block
}

// Lock/Unlock expose the head's write lock directly so block application
// can hold registry, pool, and head locks together in the fixed order the
// spec requires.
func (h *Head) Lock()   { h.mu.Lock() }
func (h *Head) Unlock() { h.mu.Unlock() }

// UnsafeSet replaces the head block — for use only while the caller
// already holds Lock().
func (h *Head) UnsafeSet(b models.Block) {
	h.block = b
}
