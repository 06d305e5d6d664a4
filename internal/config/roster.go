package config

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gradecoin/network/pkg/models"
)

// Roster is the fixed (id, passwd) set authorized to register on one
// network, loaded once at startup from a two-column CSV file with header
// row "id,passwd".
type Roster struct {
	entries map[models.StudentId]struct{}
}

// LoadRoster parses the preapproved-student CSV referenced by a network's
// configuration.
func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open roster file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse roster file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("roster file %s has no header row", path)
	}

	entries := make(map[models.StudentId]struct{}, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		entries[models.StudentId{Id: row[0], Passwd: row[1]}] = struct{}{}
	}

	return &Roster{entries: entries}, nil
}

// Contains reports whether (id, passwd) is preapproved to register.
func (r *Roster) Contains(id models.StudentId) bool {
	_, ok := r.entries[id]
	return ok
}
