// Package persistence combines the ledger and mempool into the single
// chain_state.bin snapshot described for node shutdown/startup,
// including the local node's VRF public key for a load-time consistency
// check against the identity that wrote the file.
package persistence

import (
	"bytes"
	"os"

	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
	"github.com/methalox/methaloxd/internal/wire"
)

const filePerm = 0o600

// Save writes the combined ledger + mempool snapshot to path, prefixed
// with the node's own VRF public key so a future load can confirm it is
// reopening the same identity's chain state.
func Save(path string, l *ledger.Ledger, mp *mempool.Mempool, nodeVRFPub [32]byte) error {
	var buf bytes.Buffer

	if err := wire.WriteVarBytes(&buf, nodeVRFPub[:]); err != nil {
		return internalerrors.ErrSnapshotSaveFailed
	}

	ledgerState, err := l.EncodeState()
	if err != nil {
		return err
	}
	if err := wire.WriteVarBytes(&buf, ledgerState); err != nil {
		return internalerrors.ErrSnapshotSaveFailed
	}

	pending := mp.Snapshot()
	if err := wire.WriteUint64(&buf, uint64(len(pending))); err != nil {
		return internalerrors.ErrSnapshotSaveFailed
	}
	for _, tx := range pending {
		raw, err := tx.Encode()
		if err != nil {
			return internalerrors.ErrSnapshotSaveFailed
		}
		if err := wire.WriteVarBytes(&buf, raw); err != nil {
			return internalerrors.ErrSnapshotSaveFailed
		}
	}

	return os.WriteFile(path, buf.Bytes(), filePerm)
}

// Load reads path, verifies the stored VRF public key matches
// nodeVRFPub, and reconstructs the ledger and the pending mempool
// transactions it held at shutdown. A pending transaction that no
// longer validates against the restored ledger is dropped, not fatal.
func Load(path string, nodeAddress string, nodeVRFPub [32]byte) (*ledger.Ledger, *mempool.Mempool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	r := bytes.NewReader(data)

	storedPub, err := wire.ReadVarBytes(r, 256)
	if err != nil {
		return nil, nil, internalerrors.ErrSnapshotLoadFailed
	}
	if !bytes.Equal(storedPub, nodeVRFPub[:]) {
		return nil, nil, internalerrors.ErrVRFKeyMismatch
	}

	ledgerState, err := wire.ReadVarBytes(r, 256<<20)
	if err != nil {
		return nil, nil, internalerrors.ErrSnapshotLoadFailed
	}
	l, err := ledger.DecodeState(ledgerState, nodeAddress)
	if err != nil {
		return nil, nil, err
	}

	mp := mempool.NewMempool()
	txCount, err := wire.ReadUint64(r)
	if err != nil {
		return nil, nil, internalerrors.ErrSnapshotLoadFailed
	}
	for i := uint64(0); i < txCount; i++ {
		raw, err := wire.ReadVarBytes(r, 1<<20)
		if err != nil {
			return nil, nil, internalerrors.ErrSnapshotLoadFailed
		}
		tx, err := core.DecodeTransaction(raw)
		if err != nil {
			return nil, nil, internalerrors.ErrSnapshotLoadFailed
		}
		if err := l.ValidateTransaction(tx); err != nil {
			continue
		}
		_ = mp.Add(tx)
	}

	return l, mp, nil
}
