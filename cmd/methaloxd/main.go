// Command methaloxd runs a single Methalox proof-of-stake node: consensus
// engine, gossip fabric, JSON-RPC server, and on-disk chain state
// persistence. Its boot sequence follows the teacher daemon's runNode
// pattern: parse flags, stand up logging, load or bootstrap state, start
// the background loops, then block until an OS signal asks for a clean
// shutdown.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/decred/slog"

	"github.com/methalox/methaloxd/internal/config"
	"github.com/methalox/methaloxd/internal/consensus"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
	"github.com/methalox/methaloxd/internal/mlog"
	"github.com/methalox/methaloxd/internal/network"
	"github.com/methalox/methaloxd/internal/persistence"
	"github.com/methalox/methaloxd/internal/rpc"
	"github.com/methalox/methaloxd/internal/vrf"
	"github.com/methalox/methaloxd/internal/walletutil"
)

const shutdownGracePeriod = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "methaloxd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create datadir: %w", err)
	}

	log := mlog.Logger("NODE", mlog.LevelFromString(cfg.LogLevel))

	seed, err := loadOrCreateNodeSeed(cfg.NodeKeyFile)
	if err != nil {
		return fmt.Errorf("node identity: %w", err)
	}

	wallet := walletutil.FromSeed(seed)
	keypair, err := vrf.NewKeypairFromSeed(seed)
	if err != nil {
		return fmt.Errorf("derive vrf keypair: %w", err)
	}
	vrfPub := keypair.PublicKeyBytes()

	log.Infof("node address %s", wallet.Address)

	l, mp, err := bootstrapState(cfg, wallet.Address, vrfPub, log)
	if err != nil {
		return err
	}
	l.SetLogger(mlog.Logger("LEDGER", mlog.LevelFromString(cfg.LogLevel)))

	if !l.IsValidator(wallet.Address) {
		l.RegisterVRFPublicKey(wallet.Address, vrfPub, log)
	}

	fabric := network.NewFabric(wallet.Address, mlog.Logger("NET", mlog.LevelFromString(cfg.LogLevel)))

	validators := consensus.NewValidatorSet(l)
	election := consensus.NewElection(validators, keypair, wallet.Address)
	proposer := consensus.NewProposer(l, mp, mlog.Logger("PROPOSER", mlog.LevelFromString(cfg.LogLevel)))
	validator := consensus.NewValidator(l, validators)

	tickInterval := time.Duration(cfg.TickInterval) * time.Second
	engine := consensus.NewEngine(l, election, proposer, validator, fabric, wallet.Address, tickInterval, mlog.Logger("CONSENSUS", mlog.LevelFromString(cfg.LogLevel)))
	engine.Start()

	server := rpc.NewServer(cfg.RPCListen, l, mp, fabric, mlog.Logger("RPC", mlog.LevelFromString(cfg.LogLevel)))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil {
			log.Errorf("rpc server exited: %v", err)
		}
	}

	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("rpc server shutdown: %v", err)
	}

	if err := persistence.Save(cfg.ChainStatePath(), l, mp, vrfPub); err != nil {
		return fmt.Errorf("persist chain state: %w", err)
	}
	log.Infof("chain state saved to %s", cfg.ChainStatePath())
	return nil
}

// founderVRFSeed is the all-zero Schnorrkel secret spec.md §3/§9 calls out
// as the founder's genesis VRF key: a bootstrapping placeholder, fixed and
// identity-independent so every node bootstrapping fresh derives the exact
// same founder key and therefore the exact same genesis ledger. It must
// never be derived from this node's own seed — doing so would make each
// independently-bootstrapping node mint its own, divergent "founder".
var founderVRFSeed [32]byte

// bootstrapState loads an existing snapshot, or — if none exists yet —
// builds the genesis ledger. nodeVRFPub identifies this node's own snapshot
// (for the VRF-key mismatch check on load); it plays no part in genesis,
// which always uses founderVRFSeed regardless of which node boots it.
func bootstrapState(cfg *config.Config, nodeAddress string, nodeVRFPub [32]byte, log slog.Logger) (*ledger.Ledger, *mempool.Mempool, error) {
	path := cfg.ChainStatePath()

	if _, err := os.Stat(path); err == nil {
		l, mp, err := persistence.Load(path, nodeAddress, nodeVRFPub)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		log.Infof("loaded chain state from %s (height %d)", path, l.Height())
		return l, mp, nil
	}

	log.Warnf("no chain state found at %s, bootstrapping genesis from an all-zero founder VRF seed (bootstrapping hazard, see spec.md §9)", path)
	founderKeypair, err := vrf.NewKeypairFromSeed(founderVRFSeed)
	if err != nil {
		return nil, nil, fmt.Errorf("derive founder vrf keypair: %w", err)
	}
	l, err := ledger.NewGenesis(nodeAddress, founderKeypair.PublicKeyBytes())
	if err != nil {
		return nil, nil, fmt.Errorf("build genesis: %w", err)
	}
	return l, mempool.NewMempool(), nil
}

// loadOrCreateNodeSeed reads a 32-byte identity seed from path, creating
// one from the system RNG on first run.
func loadOrCreateNodeSeed(path string) ([32]byte, error) {
	var seed [32]byte

	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != 32 {
			return seed, fmt.Errorf("node key file %s has invalid length %d, want 32", path, len(data))
		}
		copy(seed[:], data)
		return seed, nil
	}
	if !os.IsNotExist(err) {
		return seed, err
	}

	if _, err := rand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("generate node seed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return seed, err
	}
	if err := os.WriteFile(path, seed[:], 0o600); err != nil {
		return seed, err
	}
	return seed, nil
}
