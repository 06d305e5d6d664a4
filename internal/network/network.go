// Package network bundles one configured network's live state — registry,
// pending pool, head-of-chain, live feed hub, and on-disk store — and
// loads it at startup from config and persisted files: Component G.
package network

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log"
	"time"

	"github.com/gradecoin/network/internal/apierr"
	"github.com/gradecoin/network/internal/config"
	"github.com/gradecoin/network/internal/handshake"
	"github.com/gradecoin/network/internal/ledger"
	"github.com/gradecoin/network/internal/livefeed"
	"github.com/gradecoin/network/internal/registry"
	"github.com/gradecoin/network/internal/storage"
	"github.com/gradecoin/network/internal/telemetry"
	"github.com/gradecoin/network/internal/txpool"
	"github.com/gradecoin/network/pkg/models"
)

const heartbeatInterval = 30 * time.Second

// Network is one classroom network's complete live state.
type Network struct {
	Config *config.Network
	Roster *config.Roster

	Registry *registry.Registry
	Pool     *txpool.Pool
	Head     *ledger.Head
	Hub      *livefeed.Hub
	Store    *storage.Store
}

// Load builds a Network from its configuration file, reloading whatever
// block and account state is already on disk before serving a single
// request.
func Load(configPath, baseDir string) (*Network, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	roster, err := config.LoadRoster(cfg.PreapprovedUsers)
	if err != nil {
		return nil, fmt.Errorf("network %s: cannot load roster: %w", cfg.Name, err)
	}

	store, err := storage.Open(baseDir, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("network %s: cannot open storage: %w", cfg.Name, err)
	}

	reg := registry.New(roster)
	head := ledger.NewHead()

	accounts, err := store.LoadAccounts()
	if err != nil {
		return nil, fmt.Errorf("network %s: cannot reload accounts: %w", cfg.Name, err)
	}
	for fingerprint, account := range accounts {
		reg.Insert(fingerprint, account)
	}
	for fingerprint, bot := range cfg.Bots {
		if _, ok := reg.Lookup(fingerprint); ok {
			continue
		}
		reg.Insert(fingerprint, models.Account{
			UserId:  models.StudentId{Id: fingerprint, Passwd: "not_used"},
			IsBot:   true,
			Balance: bot.StartingBalance,
		})
	}

	if latest, ok, err := store.LoadLatestBlock(); err != nil {
		return nil, fmt.Errorf("network %s: cannot reload head block: %w", cfg.Name, err)
	} else if ok {
		head.Lock()
		head.UnsafeSet(latest)
		head.Unlock()
	}

	log.Printf("network %s: loaded %d accounts, head nonce %d", cfg.Name, len(accounts), head.Current().Nonce)

	return &Network{
		Config:   cfg,
		Roster:   roster,
		Registry: reg,
		Pool:     txpool.New(),
		Head:     head,
		Hub:      livefeed.NewHub(),
		Store:    store,
	}, nil
}

// Run starts the network's background goroutines (live feed fan-out,
// heartbeat telemetry) for the lifetime of ctx.
func (n *Network) Run(ctx context.Context) {
	go n.Hub.Run()
	telemetry.New(n.Registry, n.Pool, n.Head, n.Hub, heartbeatInterval).Run(ctx)
}

// Register runs the hybrid-handshake decode and the registry admission
// checks (preapproval, uniqueness), then inserts the new account. It
// returns the account's fingerprint, the identifier the registration
// response carries back to the client.
func (n *Network) Register(envelope models.HandshakeEnvelope, serverKey *rsa.PrivateKey) (string, *models.Account, *apierr.Error) {
	decoded, aerr := handshake.Decode(envelope, serverKey)
	if aerr != nil {
		return "", nil, aerr
	}

	if !n.Roster.Contains(decoded.StudentId) {
		return "", nil, apierr.New(apierr.NotPreapproved)
	}
	if n.Registry.HasStudentId(decoded.StudentId) {
		return "", nil, apierr.New(apierr.AlreadyRegistered)
	}
	if _, err := handshake.ParseRSAPublicKey(decoded.PublicKey); err != nil {
		return "", nil, apierr.New(apierr.InvalidPublicKey)
	}

	account := models.Account{
		UserId:    decoded.StudentId,
		PublicKey: decoded.PublicKey,
		Balance:   n.Config.RegisterBonus,
		IsBot:     false,
	}
	n.Registry.Insert(decoded.Fingerprint, account)

	if err := n.Store.PersistAccount(decoded.Fingerprint, account); err != nil {
		log.Printf("network %s: failed to persist new account %s: %v", n.Config.Name, decoded.Fingerprint, err)
	}

	return decoded.Fingerprint, &account, nil
}

// SubmitTransaction runs the pool admission checks and, on success,
// broadcasts the admission on the live feed.
func (n *Network) SubmitTransaction(tx models.Transaction, bearerToken string) *apierr.Error {
	bounds := txpool.Bounds{Lower: n.Config.TxLowerLimit, Upper: n.Config.TxUpperLimit}
	return txpool.Submit(n.Pool, n.Registry, bounds, n.Hub, tx, bearerToken)
}

// SubmitBlock runs the block validator and, on success, applies the
// block's effects and replaces the head.
func (n *Network) SubmitBlock(block models.Block, bearerToken string) *apierr.Error {
	params := ledger.Params{
		BlockTransactionCount: n.Config.BlockTransactionCount,
		HashZeros:             n.Config.HashZeros,
		BlockReward:           n.Config.BlockReward,
		TxTrafficReward:       n.Config.TxTrafficReward,
	}
	return ledger.Submit(n.Registry, n.Pool, n.Head, params, n.Store, n.Hub, block, bearerToken)
}
