package models

import "encoding/json"

// marshalCompact produces the stable, whitespace-free byte string that
// block- and transaction-hashing depend on. json.Marshal already walks
// struct fields in declaration order and never inserts insignificant
// whitespace, so it is a valid canonicalizer as long as every hashed type
// pins its field order explicitly (see canonicalTxJSON, canonicalBlockJSON).
func marshalCompact(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
