package ledger

import (
	"github.com/decred/slog"

	"github.com/methalox/methaloxd/internal/core"
)

// NewGenesis builds the genesis ledger per spec §3: index 0, prev_hash
// "0", zero transactions, validator = founder. The founder is seeded with
// FounderSeedBalance XSX and FounderSeedStake stake; xsx_circulating starts
// at InitialXSXCirculating. founderVRFPub is the founder's
// registered VRF public key — spec §9 notes this is conventionally derived
// from an all-zero Schnorrkel secret, a bootstrapping placeholder the
// caller must log as a hazard, not silently accept as a feature.
func NewGenesis(nodeAddress string, founderVRFPub [32]byte) (*Ledger, error) {
	l := newEmptyLedger()
	l.nodeAddress = nodeAddress

	l.credit(FounderAddress, core.AssetXSX, FounderSeedBalance)
	l.staked[FounderAddress] = FounderSeedStake
	l.validators[FounderAddress] = true
	l.vrfPublicKeys[FounderAddress] = founderVRFPub
	l.xsxCirculating = InitialXSXCirculating

	genesisBlock := core.NewBlock(
		0,
		GenesisTimestamp,
		nil,
		core.GenesisPrevHash,
		FounderAddress,
		map[core.Asset]uint64{},
		nil,
		nil,
	)
	if err := genesisBlock.SetHash(); err != nil {
		return nil, err
	}
	l.blocks = []*core.Block{genesisBlock}
	return l, nil
}

// RegisterVRFPublicKey is used by the boot sequence to register a
// validator identity that isn't the founder (e.g. this node's own key, if
// it differs).
func (l *Ledger) RegisterVRFPublicKey(addr string, pub [32]byte, log slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vrfPublicKeys[addr] = pub
	if log != nil {
		log.Debugf("registered vrf public key for %s", addr)
	}
}
