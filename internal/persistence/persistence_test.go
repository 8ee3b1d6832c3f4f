package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
	"github.com/methalox/methaloxd/internal/vrf"
	"github.com/methalox/methaloxd/internal/walletutil"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	kp, err := vrf.NewRandomKeypair()
	require.NoError(t, err)
	nodePub := kp.PublicKeyBytes()

	l, err := ledger.NewGenesis("node-addr", nodePub)
	require.NoError(t, err)

	w, err := walletutil.New()
	require.NoError(t, err)
	tx := core.NewTransferTransaction(w.Address, "recipient", 10, core.AssetXSX, 1, 0)
	require.NoError(t, tx.Sign(w.PrivateKey))
	mp := mempool.NewMempool()
	require.NoError(t, mp.Add(tx))

	path := filepath.Join(t.TempDir(), "chain_state.bin")
	require.NoError(t, Save(path, l, mp, nodePub))

	restoredLedger, restoredMempool, err := Load(path, "node-addr", nodePub)
	require.NoError(t, err)

	require.Equal(t, l.Height(), restoredLedger.Height())

	// The pending transaction's sender has no balance, so replaying it on
	// load fails insufficient-balance validation and it is correctly
	// dropped rather than restored into the mempool.
	require.Equal(t, 0, restoredMempool.Count(), "unfunded pending tx should be dropped on load")
}

func TestLoadRejectsMismatchedVRFKey(t *testing.T) {
	kp, err := vrf.NewRandomKeypair()
	require.NoError(t, err)
	nodePub := kp.PublicKeyBytes()

	l, err := ledger.NewGenesis("node-addr", nodePub)
	require.NoError(t, err)
	mp := mempool.NewMempool()

	path := filepath.Join(t.TempDir(), "chain_state.bin")
	require.NoError(t, Save(path, l, mp, nodePub))

	var otherPub [32]byte
	otherPub[0] = 0xff
	_, _, err = Load(path, "node-addr", otherPub)
	require.ErrorIs(t, err, internalerrors.ErrVRFKeyMismatch)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.bin")
	_, _, err := Load(path, "node-addr", [32]byte{})
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}
