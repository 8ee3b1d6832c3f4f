package consensus

import (
	"github.com/methalox/methaloxd/internal/ledger"
)

// ValidatorSet is a thin, read-only view over the ledger's registered
// validators, stakes, and VRF public keys. The ledger is the source of
// truth (stake changes only ever happen via block application); this type
// exists so the election and validation logic name their dependency
// narrowly instead of taking the whole Ledger.
type ValidatorSet struct {
	ledger *ledger.Ledger
}

// NewValidatorSet wraps a ledger for validator-set queries.
func NewValidatorSet(l *ledger.Ledger) *ValidatorSet {
	return &ValidatorSet{ledger: l}
}

// IsRegistered reports whether addr may produce blocks.
func (v *ValidatorSet) IsRegistered(addr string) bool {
	return v.ledger.IsValidator(addr)
}

// VRFPublicKey returns a registered validator's Schnorrkel public key.
func (v *ValidatorSet) VRFPublicKey(addr string) ([32]byte, bool) {
	return v.ledger.VRFPublicKey(addr)
}

// Stake returns addr's stake and the total stake across all validators.
func (v *ValidatorSet) Stake(addr string) (mine, total uint64) {
	return v.ledger.Stake(addr)
}
