package ledger

import (
	"bytes"
	"sort"

	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/wire"
)

const maxBlockBytes = 64 << 20 // 64MiB, generous ceiling for a single block

// EncodeState serializes the entire ledger (blocks, balances, treasury,
// circulating supply, validator set, stakes, VRF public keys) for the
// chain_state.bin snapshot described in spec §6. Mempool contents are
// serialized separately by internal/mempool and combined by the caller.
func (l *Ledger) EncodeState() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var buf bytes.Buffer

	if err := wire.WriteUint64(&buf, uint64(len(l.blocks))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, b := range l.blocks {
		raw, err := b.Encode()
		if err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteVarBytes(&buf, raw); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	type balKey struct {
		addr  string
		asset core.Asset
	}
	var keys []balKey
	for addr, perAsset := range l.balances {
		for asset := range perAsset {
			keys = append(keys, balKey{addr, asset})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].addr != keys[j].addr {
			return keys[i].addr < keys[j].addr
		}
		return keys[i].asset < keys[j].asset
	})
	if err := wire.WriteUint64(&buf, uint64(len(keys))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, k := range keys {
		e := l.balances[k.addr][k.asset]
		if err := wire.WriteString(&buf, k.addr); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteString(&buf, string(k.asset)); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteUint64(&buf, e.balance); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteUint64(&buf, e.nonce); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	if err := wire.WriteUint64(&buf, l.xsxCirculating); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}

	validators := make([]string, 0, len(l.validators))
	for addr := range l.validators {
		validators = append(validators, addr)
	}
	sort.Strings(validators)
	if err := wire.WriteUint64(&buf, uint64(len(validators))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, addr := range validators {
		if err := wire.WriteString(&buf, addr); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	stakers := l.sortedStakerAddrs()
	if err := wire.WriteUint64(&buf, uint64(len(stakers))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, addr := range stakers {
		if err := wire.WriteString(&buf, addr); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteUint64(&buf, l.staked[addr]); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	vrfAddrs := make([]string, 0, len(l.vrfPublicKeys))
	for addr := range l.vrfPublicKeys {
		vrfAddrs = append(vrfAddrs, addr)
	}
	sort.Strings(vrfAddrs)
	if err := wire.WriteUint64(&buf, uint64(len(vrfAddrs))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, addr := range vrfAddrs {
		pub := l.vrfPublicKeys[addr]
		if err := wire.WriteString(&buf, addr); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteVarBytes(&buf, pub[:]); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	treasuryAssets := make([]core.Asset, 0, len(l.treasury))
	for a := range l.treasury {
		treasuryAssets = append(treasuryAssets, a)
	}
	sort.Slice(treasuryAssets, func(i, j int) bool { return treasuryAssets[i] < treasuryAssets[j] })
	if err := wire.WriteUint64(&buf, uint64(len(treasuryAssets))); err != nil {
		return nil, internalerrors.ErrSnapshotSaveFailed
	}
	for _, a := range treasuryAssets {
		if err := wire.WriteString(&buf, string(a)); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteUint64(&buf, l.treasury[a]); err != nil {
			return nil, internalerrors.ErrSnapshotSaveFailed
		}
	}

	return buf.Bytes(), nil
}

// DecodeState rebuilds a Ledger from a snapshot produced by EncodeState.
// nodeAddress is supplied by the caller (it is not part of the shared
// ledger state).
func DecodeState(data []byte, nodeAddress string) (*Ledger, error) {
	r := bytes.NewReader(data)
	l := newEmptyLedger()
	l.nodeAddress = nodeAddress

	blockCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < blockCount; i++ {
		raw, err := wire.ReadVarBytes(r, maxBlockBytes)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		blk, err := core.DecodeBlock(raw)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		l.blocks = append(l.blocks, blk)
	}

	balCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < balCount; i++ {
		addr, err := wire.ReadString(r, 4096)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		asset, err := wire.ReadString(r, 256)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		balance, err := wire.ReadUint64(r)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		nonce, err := wire.ReadUint64(r)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		e := l.entry(addr, core.Asset(asset))
		e.balance = balance
		e.nonce = nonce
	}

	xsxCirculating, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	l.xsxCirculating = xsxCirculating

	validatorCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < validatorCount; i++ {
		addr, err := wire.ReadString(r, 4096)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		l.validators[addr] = true
	}

	stakerCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < stakerCount; i++ {
		addr, err := wire.ReadString(r, 4096)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		stake, err := wire.ReadUint64(r)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		l.staked[addr] = stake
	}

	vrfCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < vrfCount; i++ {
		addr, err := wire.ReadString(r, 4096)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		pub, err := wire.ReadVarBytes(r, 256)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		var pubArr [32]byte
		copy(pubArr[:], pub)
		l.vrfPublicKeys[addr] = pubArr
	}

	treasuryCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < treasuryCount; i++ {
		asset, err := wire.ReadString(r, 256)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		amount, err := wire.ReadUint64(r)
		if err != nil {
			return nil, internalerrors.ErrSnapshotLoadFailed
		}
		l.treasury[core.Asset(asset)] = amount
	}

	if len(l.blocks) == 0 {
		return nil, internalerrors.ErrSnapshotLoadFailed
	}
	return l, nil
}
