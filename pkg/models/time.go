package models

import (
	"strings"
	"time"
)

// canonicalTimeLayout matches the original implementation's NaiveDateTime
// serialization: ISO-8601 with no timezone offset and no trailing "Z".
const canonicalTimeLayout = "2006-01-02T15:04:05"

// Timestamp is a wall-clock moment serialized without a timezone component.
// Transaction and block hashes are computed over this exact representation,
// so the layout must never change once networks have accepted blocks under
// it.
type Timestamp struct {
	time.Time
}

// Now returns the current instant truncated to whole seconds, matching the
// precision the canonical layout can round-trip.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(canonicalTimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := time.Parse(canonicalTimeLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
