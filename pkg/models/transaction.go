package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// Transaction moves amount units of gradecoin from source to target. It is
// a value type — fingerprints are identifiers, never owning references.
type Transaction struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Amount    uint16    `json:"amount"`
	Timestamp Timestamp `json:"timestamp"`
}

// canonicalTxJSON is the field layout the MD5 transaction hash is computed
// over: source, target, amount, timestamp, in exactly that order with no
// whitespace. Kept as its own type (rather than reusing Transaction's json
// tags) so a future field added to Transaction for API purposes can never
// silently change what gets hashed.
type canonicalTxJSON struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Amount    uint16    `json:"amount"`
	Timestamp Timestamp `json:"timestamp"`
}

// Canonical returns the exact byte string the proposer's JWT "tha" claim
// must MD5-hash to. encoding/json already emits struct fields in
// declaration order with no inserted whitespace, so no extra canonicalizer
// is needed beyond pinning the field order in canonicalTxJSON.
func (t Transaction) Canonical() ([]byte, error) {
	return marshalCompact(canonicalTxJSON{
		Source:    t.Source,
		Target:    t.Target,
		Amount:    t.Amount,
		Timestamp: t.Timestamp,
	})
}

// TransactionId is the pending-pool uniqueness key: hex(SHA-256(source ∥ target)).
func TransactionId(source, target string) string {
	sum := sha256.Sum256([]byte(source + target))
	return hex.EncodeToString(sum[:])
}
