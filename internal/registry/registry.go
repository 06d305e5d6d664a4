// Package registry holds one network's account ledger: the only place
// balances and new accounts mutate.
//
// Concurrency: sync.RWMutex allows concurrent reads during the hot path
// (looking an account up for a transaction or block submission) while
// writes (registering a new student, crediting/debiting a balance) are
// serialized — the same split the teacher's address-watchlist engine uses
// for its hot lookup path.
package registry

import (
	"sync"

	"github.com/gradecoin/network/internal/config"
	"github.com/gradecoin/network/pkg/models"
)

// Registry maps fingerprint to Account for one network.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	roster   *config.Roster
}

func New(roster *config.Roster) *Registry {
	return &Registry{
		accounts: make(map[string]models.Account),
		roster:   roster,
	}
}

// Lookup returns a copy of the account at fingerprint, if any.
func (r *Registry) Lookup(fingerprint string) (models.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.accounts[fingerprint]
	return acc, ok
}

// IsPreapproved reports whether (id, passwd) is on the network's roster.
func (r *Registry) IsPreapproved(id models.StudentId) bool {
	return r.roster.Contains(id)
}

// HasStudentId reports whether any account already carries this StudentId
// — the registration uniqueness gate.
func (r *Registry) HasStudentId(id models.StudentId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.UserId == id {
			return true
		}
	}
	return false
}

// Insert creates a brand new account. Callers are responsible for having
// already checked HasStudentId — Insert does not re-check uniqueness so it
// can be used for both registration and bootstrap (bots, restart reload)
// without re-deriving that policy.
func (r *Registry) Insert(fingerprint string, account models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[fingerprint] = account
}

// Mutate applies fn to the account at fingerprint under the registry's
// write lock and stores the result back. Returns false if no such account
// exists.
func (r *Registry) Mutate(fingerprint string, fn func(models.Account) models.Account) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[fingerprint]
	if !ok {
		return false
	}
	r.accounts[fingerprint] = fn(acc)
	return true
}

// Snapshot returns every account, unordered — GET /user lists them in Go
// map iteration order, which is not defined.
func (r *Registry) Snapshot() map[string]models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.Account, len(r.accounts))
	for fp, acc := range r.accounts {
		out[fp] = acc
	}
	return out
}

// Lock/Unlock expose the registry's write lock directly so the block
// applier (internal/ledger) can hold it across the whole registry→pool→head
// critical section required by the application-phase lock ordering.
func (r *Registry) Lock()   { r.mu.Lock() }
func (r *Registry) Unlock() { r.mu.Unlock() }

// UnsafeGet and UnsafeSet read/write the map directly without acquiring the
// lock — for use only while the caller already holds Lock(), e.g. inside
// the ledger's block application critical section.
func (r *Registry) UnsafeGet(fingerprint string) (models.Account, bool) {
	acc, ok := r.accounts[fingerprint]
	return acc, ok
}

func (r *Registry) UnsafeSet(fingerprint string, account models.Account) {
	r.accounts[fingerprint] = account
}

// UnsafeAll returns the live map itself under no lock — only safe to
// iterate while the caller holds Lock().
func (r *Registry) UnsafeAll() map[string]models.Account {
	return r.accounts
}
