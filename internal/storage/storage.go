// Package storage persists one network's accepted blocks and mutated
// accounts to disk as flat JSON files, and reloads them at startup:
// Component F. There is no database — every accepted block is durable the
// instant its file is written, and a restart replays the latest state by
// reading back what is already on disk, the same scheme the original
// engine used.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gradecoin/network/pkg/models"
)

const (
	blocksDirName = "blocks"
	usersDirName  = "users"
	blockSuffix   = ".block"
	userSuffix    = ".guy"
)

// Store is the on-disk adapter for a single network, rooted at
// <baseDir>/<network name>/.
type Store struct {
	root string
}

// Open ensures the network's blocks/ and users/ directories exist under
// baseDir/networkName and returns a Store ready to read and write them.
func Open(baseDir, networkName string) (*Store, error) {
	root := filepath.Join(baseDir, networkName)
	if err := os.MkdirAll(filepath.Join(root, blocksDirName), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create blocks directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, usersDirName), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create users directory: %w", err)
	}
	return &Store{root: root}, nil
}

// PersistBlock writes block to <epoch seconds>.block. Epoch seconds,
// not a sequence number, is what the original engine keyed block files
// by, and it sorts correctly for LoadLatestBlock as long as no two blocks
// are ever accepted in the same second.
func (s *Store) PersistBlock(block models.Block) error {
	name := strconv.FormatInt(block.Timestamp.Unix(), 10) + blockSuffix
	return writeJSON(filepath.Join(s.root, blocksDirName, name), block)
}

// PersistAccount writes the account to <student_id>.guy, the filename the
// original engine used; the file itself also carries the fingerprint since
// that, not the student id, is the registry's key on reload.
func (s *Store) PersistAccount(fingerprint string, account models.Account) error {
	name := account.UserId.Id + userSuffix
	atRest := models.AccountAtRest{Fingerprint: fingerprint, Account: account}
	return writeJSON(filepath.Join(s.root, usersDirName, name), atRest)
}

// LoadLatestBlock returns the most recent block on disk, by epoch-seconds
// filename, or false if the network has never had a block accepted.
func (s *Store) LoadLatestBlock() (models.Block, bool, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, blocksDirName))
	if err != nil {
		return models.Block{}, false, fmt.Errorf("cannot list blocks directory: %w", err)
	}

	var best string
	var bestEpoch int64 = -1
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), blockSuffix) {
			continue
		}
		epoch, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), blockSuffix), 10, 64)
		if err != nil {
			continue
		}
		if epoch > bestEpoch {
			bestEpoch = epoch
			best = entry.Name()
		}
	}
	if best == "" {
		return models.Block{}, false, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.root, blocksDirName, best))
	if err != nil {
		return models.Block{}, false, fmt.Errorf("cannot read block file %s: %w", best, err)
	}
	var block models.Block
	if err := json.Unmarshal(raw, &block); err != nil {
		return models.Block{}, false, fmt.Errorf("malformed block file %s: %w", best, err)
	}
	return block, true, nil
}

// LoadAccounts returns every account on disk, keyed by fingerprint.
func (s *Store) LoadAccounts() (map[string]models.Account, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, usersDirName))
	if err != nil {
		return nil, fmt.Errorf("cannot list users directory: %w", err)
	}

	// Sorted so files are read, and a read or parse error is reported, in a
	// deterministic order.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), userSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	accounts := make(map[string]models.Account, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.root, usersDirName, name))
		if err != nil {
			return nil, fmt.Errorf("cannot read user file %s: %w", name, err)
		}
		var atRest models.AccountAtRest
		if err := json.Unmarshal(raw, &atRest); err != nil {
			return nil, fmt.Errorf("malformed user file %s: %w", name, err)
		}
		accounts[atRest.Fingerprint] = atRest.Account
	}
	return accounts, nil
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
