package models

// StudentId identifies an enrolled student against the preapproved roster.
// Two accounts may never share the same (Id, Passwd) pair.
type StudentId struct {
	Id     string `json:"id"`
	Passwd string `json:"passwd"`
}

// Account is a registered participant in one network. Balance is mutated
// only while the registry's write lock is held; accounts are never removed
// once created.
type Account struct {
	UserId    StudentId `json:"user_id"`
	PublicKey string    `json:"public_key"`
	Balance   uint16    `json:"balance"`
	IsBot     bool      `json:"is_bot"`
}

// AccountAtRest is the on-disk shape of an account, keyed by its fingerprint
// so the persistence adapter can reinsert it into the registry at startup
// without recomputing the hash.
type AccountAtRest struct {
	Fingerprint string  `json:"fingerprint"`
	Account     Account `json:"user"`
}

// PublicAccount is the shape returned by GET /user — no public key, no
// student identity, just what a classmate is allowed to see about a peer.
type PublicAccount struct {
	Fingerprint string `json:"fingerprint"`
	Balance     uint16 `json:"balance"`
	IsBot       bool   `json:"is_bot"`
}
