// Package telemetry periodically emits a network's aggregate health —
// pool depth, registered account count, current head — onto the live
// feed: Component L. It never touches engine state beyond reading it.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/gradecoin/network/internal/ledger"
	"github.com/gradecoin/network/internal/registry"
	"github.com/gradecoin/network/internal/txpool"
)

// Notifier is the live feed's publish side. A nil Notifier makes Run a
// no-op loop that just waits for ctx.Done().
type Notifier interface {
	Notify(event string, payload interface{})
}

// Stats is the periodic snapshot broadcast under the "stats" event.
type Stats struct {
	Accounts  int    `json:"accounts"`
	Pending   int    `json:"pending_transactions"`
	HeadHash  string `json:"head_hash"`
	HeadNonce uint32 `json:"head_nonce"`
}

// Heartbeat ticks a fixed interval for the lifetime of ctx, emitting a
// Stats snapshot of one network each tick.
type Heartbeat struct {
	reg      *registry.Registry
	pool     *txpool.Pool
	head     *ledger.Head
	notifier Notifier
	interval time.Duration
}

func New(reg *registry.Registry, pool *txpool.Pool, head *ledger.Head, notifier Notifier, interval time.Duration) *Heartbeat {
	return &Heartbeat{reg: reg, pool: pool, head: head, notifier: notifier, interval: interval}
}

// Run blocks until ctx is cancelled, broadcasting a Stats snapshot every
// interval.
func (h *Heartbeat) Run(ctx context.Context) {
	if h.notifier == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("telemetry: heartbeat stopping")
			return
		case <-ticker.C:
			current := h.head.Current()
			stats := Stats{
				Accounts:  len(h.reg.Snapshot()),
				Pending:   h.pool.Len(),
				HeadHash:  current.Hash,
				HeadNonce: current.Nonce,
			}
			log.Printf("telemetry: accounts=%d pending=%d head_hash=%s head_nonce=%d", stats.Accounts, stats.Pending, stats.HeadHash, stats.HeadNonce)
			h.notifier.Notify("stats", stats)
		}
	}
}
