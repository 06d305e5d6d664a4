// Package ledger validates and applies proposed blocks: Component E of the
// engine's request-validation core — membership, uniqueness, hash
// reproduction, proof-of-work, and JWT hash binding, followed by the
// atomic application of a block's effects across the registry, pool, and
// head-of-chain.
package ledger

import (
	"encoding/hex"
	"log"
	"strings"

	"golang.org/x/crypto/blake2s"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/auth"
	"github.com/gradecoin/network/internal/registry"
	"github.com/gradecoin/network/internal/txpool"
	"github.com/gradecoin/network/pkg/models"
)

// Params carries the per-network constants the validator and applier need.
type Params struct {
	BlockTransactionCount uint8
	HashZeros             uint8
	BlockReward           uint16
	TxTrafficReward       uint16
}

// Persister is the subset of the persistence adapter (Component F) the
// ledger needs during block application: write the accepted block and
// every non-bot account it mutated.
type Persister interface {
	PersistBlock(models.Block) error
	PersistAccount(fingerprint string, account models.Account) error
}

// Notifier receives best-effort, non-authoritative events for the live
// feed (Component K) and telemetry (Component L). A nil Notifier is valid
// — ledger operations never depend on it succeeding or even existing.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Submit runs the block validator's ordered checks and, on success, applies
// the block's effects under the registry→pool→head write-lock ordering the
// spec's concurrency model requires.
func Submit(reg *registry.Registry, pool *txpool.Pool, head *Head, params Params, persister Persister, notifier Notifier, block models.Block, bearerToken string) *apierr.Error {
	if len(block.TransactionList) < int(params.BlockTransactionCount) {
		return apierr.New(apierr.BlockUnderfilled)
	}

	coinbaseId := block.TransactionList[0]
	pending := pool.Snapshot()
	coinbaseTx, ok := pending[coinbaseId]
	if !ok {
		return apierr.New(apierr.CoinbaseUnknown)
	}
	proposer, ok := reg.Lookup(coinbaseTx.Source)
	if !ok {
		return apierr.New(apierr.CoinbaseUnknown)
	}

	claims, aerr := auth.Authenticate(bearerToken, proposer.PublicKey)
	if aerr != nil {
		return aerr
	}

	if claims.Tha != block.Hash {
		return apierr.New(apierr.HashMismatch)
	}

	if hasDuplicates(block.TransactionList) {
		return apierr.New(apierr.DuplicateTransactionInBlock)
	}

	for _, id := range block.TransactionList {
		if _, ok := pending[id]; !ok {
			return apierr.New(apierr.UnknownTransactionInBlock)
		}
	}

	recomputed, err := recomputeHash(block)
	if err != nil {
		return apierr.New(apierr.HashMismatch)
	}
	if recomputed != block.Hash {
		return apierr.New(apierr.HashMismatch)
	}

	if !hasLeadingZeros(recomputed, params.HashZeros) {
		return apierr.New(apierr.PoWInsufficient)
	}

	apply(reg, pool, head, params, persister, notifier, block, coinbaseTx.Source)
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// recomputeHash reproduces the BLAKE2s digest over the block's canonical
// serialization: {transaction_list, nonce, timestamp}, hex-encoded.
func recomputeHash(block models.Block) (string, error) {
	canonical, err := block.Canonical()
	if err != nil {
		return "", err
	}
	sum := blake2s.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func hasLeadingZeros(hexHash string, zeros uint8) bool {
	if int(zeros) > len(hexHash) {
		return false
	}
	return strings.Count(hexHash[:zeros], "0") == int(zeros)
}

// apply executes the block's effects under registry→pool→head write locks
// acquired together in a single critical section, per the spec's
// lock-ordering rule for any operation that writes more than one
// container.
func apply(reg *registry.Registry, pool *txpool.Pool, head *Head, params Params, persister Persister, notifier Notifier, block models.Block, proposerFingerprint string) {
	reg.Lock()
	defer reg.Unlock()
	pool.Lock()
	defer pool.Unlock()
	head.Lock()
	defer head.Unlock()

	creditProposer(reg, proposerFingerprint, params.BlockReward)

	mutatedNonBots := make(map[string]models.Account)

	for _, id := range block.TransactionList {
		tx, ok := pool.UnsafeGet(id)
		if !ok {
			continue
		}
		pool.UnsafeDelete(id)

		source, ok := reg.UnsafeGet(tx.Source)
		if !ok {
			continue
		}

		// Re-check funding at application time (not just admission time):
		// a transaction's source may have been debited by an earlier block
		// since this one was admitted to the pool. Skipping here, rather
		// than applying and wrapping, keeps balance a true non-negative
		// invariant.
		if source.Balance < tx.Amount {
			log.Printf("ledger: skipping %s, source %s no longer has sufficient balance (%d < %d)", id, tx.Source, source.Balance, tx.Amount)
			continue
		}

		source.Balance -= tx.Amount - params.TxTrafficReward
		reg.UnsafeSet(tx.Source, source)
		if !source.IsBot {
			mutatedNonBots[tx.Source] = source
		}

		target, ok := reg.UnsafeGet(tx.Target)
		if ok {
			target.Balance += tx.Amount
			reg.UnsafeSet(tx.Target, target)
			if !target.IsBot {
				mutatedNonBots[tx.Target] = target
			}
		}

		if source.IsBot {
			reciprocalId := models.TransactionId(tx.Target, tx.Source)
			pool.UnsafeInsert(reciprocalId, models.Transaction{
				Source:    tx.Target,
				Target:    tx.Source,
				Amount:    tx.Amount,
				Timestamp: models.Now(),
			})
		}
	}

	if proposer, ok := reg.UnsafeGet(proposerFingerprint); ok && !proposer.IsBot {
		mutatedNonBots[proposerFingerprint] = proposer
	}

	if err := persister.PersistBlock(block); err != nil {
		log.Printf("ledger: failed to persist block: %v", err)
	}
	for fingerprint, account := range mutatedNonBots {
		if err := persister.PersistAccount(fingerprint, account); err != nil {
			log.Printf("ledger: failed to persist account %s: %v", fingerprint, err)
		}
	}

	head.UnsafeSet(block)

	if notifier != nil {
		notifier.Notify("block", block)
	}
}

func creditProposer(reg *registry.Registry, fingerprint string, reward uint16) {
	if acc, ok := reg.UnsafeGet(fingerprint); ok {
		acc.Balance += reward
		reg.UnsafeSet(fingerprint, acc)
	}
}
