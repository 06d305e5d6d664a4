// Package txpool admits proposed transactions into the pending pool:
// Component D of the engine's request-validation core.
package txpool

import (
	"encoding/hex"
	"sync"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/auth"
	"github.com/gradecoin/network/internal/registry"
	"github.com/gradecoin/network/pkg/models"

	"crypto/md5"
)

// Pool is the in-memory pending-transaction set for one network. At most
// one entry may exist per ordered (source, target) pair; entries have no
// TTL and are only ever removed by a block application consuming them.
type Pool struct {
	mu           sync.RWMutex
	transactions map[string]models.Transaction
}

func New() *Pool {
	return &Pool{transactions: make(map[string]models.Transaction)}
}

// Bounds carries the per-network amount limits the pool enforces at
// admission time.
type Bounds struct {
	Lower uint16
	Upper uint16
}

// Notifier receives a best-effort event when a transaction is admitted.
// A nil Notifier is valid — admission never depends on it.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Submit runs the nine ordered admission checks of the transaction
// validator and, on success, inserts tx into the pool under
// TransactionId(source, target). The first failing check wins.
func Submit(pool *Pool, reg *registry.Registry, bounds Bounds, notifier Notifier, tx models.Transaction, bearerToken string) *apierr.Error {
	source, ok := reg.Lookup(tx.Source)
	if !ok {
		return apierr.New(apierr.UnknownAccount)
	}
	if source.IsBot {
		return apierr.New(apierr.BotSenderForbidden)
	}

	claims, aerr := auth.Authenticate(bearerToken, source.PublicKey)
	if aerr != nil {
		return aerr
	}

	if _, ok := reg.Lookup(tx.Target); !ok {
		return apierr.New(apierr.UnknownAccount)
	}

	id := models.TransactionId(tx.Source, tx.Target)
	if pool.has(id) {
		return apierr.New(apierr.DuplicatePending)
	}

	if tx.Source == tx.Target {
		return apierr.New(apierr.SelfTransfer)
	}

	if tx.Amount < bounds.Lower || tx.Amount > bounds.Upper {
		return apierr.New(apierr.AmountOutOfBounds)
	}

	if source.Balance < tx.Amount {
		return apierr.New(apierr.InsufficientBalance)
	}

	canonical, err := tx.Canonical()
	if err != nil {
		return apierr.New(apierr.PayloadJSONFailed)
	}
	sum := md5.Sum(canonical)
	if claims.Tha != hex.EncodeToString(sum[:]) {
		return apierr.New(apierr.HashMismatch)
	}

	pool.insert(id, tx)
	if notifier != nil {
		notifier.Notify("transaction", tx)
	}
	return nil
}

func (p *Pool) has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.transactions[id]
	return ok
}

func (p *Pool) insert(id string, tx models.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transactions[id] = tx
}

// Snapshot returns every pending transaction, keyed by TransactionId.
func (p *Pool) Snapshot() map[string]models.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]models.Transaction, len(p.transactions))
	for id, tx := range p.transactions {
		out[id] = tx
	}
	return out
}

// Len reports the current pool size, for telemetry only.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.transactions)
}

// Lock/Unlock expose the pool's write lock directly so the block applier
// (internal/ledger) can hold it across the registry→pool→head critical
// section the spec's lock ordering requires.
func (p *Pool) Lock()   { p.mu.Lock() }
func (p *Pool) Unlock() { p.mu.Unlock() }

// UnsafeHas, UnsafeGet, UnsafeDelete, and UnsafeInsert touch the pool map
// directly without acquiring the lock — for use only while the caller
// already holds Lock().
func (p *Pool) UnsafeHas(id string) bool {
	_, ok := p.transactions[id]
	return ok
}

func (p *Pool) UnsafeGet(id string) (models.Transaction, bool) {
	tx, ok := p.transactions[id]
	return tx, ok
}

func (p *Pool) UnsafeDelete(id string) {
	delete(p.transactions, id)
}

func (p *Pool) UnsafeInsert(id string, tx models.Transaction) {
	p.transactions[id] = tx
}
