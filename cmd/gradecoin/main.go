package main

import (
	"context"
	"log"
	"os"

	"github.com/gradecoin/network/internal/api"
	"github.com/gradecoin/network/internal/keys"
	"github.com/gradecoin/network/internal/network"
)

// listenAddress is fixed rather than configurable — the spec treats the
// HTTP listener as a loopback-bound classroom service, not a public one.
const listenAddress = "127.0.0.1:8080"

const (
	defaultConfigPath = "config.yaml"
	serverKeyPath     = "secrets/gradecoin.pem"
	dataDir           = "."
)

func main() {
	log.Println("Starting gradecoin network engine...")

	serverKey, err := keys.Load(serverKeyPath)
	if err != nil {
		log.Fatalf("FATAL: cannot load server key from %s: %v", serverKeyPath, err)
	}

	configPaths := os.Args[1:]
	if len(configPaths) == 0 {
		configPaths = []string{defaultConfigPath}
	}

	var networks []*network.Network
	for _, path := range configPaths {
		net, err := network.Load(path, dataDir)
		if err != nil {
			log.Printf("WARNING: skipping network config %s: %v", path, err)
			continue
		}
		log.Printf("loaded network %q at prefix %s", net.Config.Name, net.Config.URLPrefix)
		networks = append(networks, net)
	}

	if len(networks) == 0 {
		log.Fatal("FATAL: no network configuration loaded, exiting")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, net := range networks {
		go net.Run(ctx)
	}

	r := api.NewRouter(networks, serverKey.Private)

	log.Printf("gradecoin listening on %s (%d networks)", listenAddress, len(networks))
	if err := r.Run(listenAddress); err != nil {
		log.Fatalf("FATAL: server exited: %v", err)
	}
}
