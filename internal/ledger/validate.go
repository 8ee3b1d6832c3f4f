package ledger

import (
	"github.com/methalox/methaloxd/internal/core"
	internalerrors "github.com/methalox/methaloxd/internal/errors"
)

// ValidateTransaction performs the full pure check from spec §4.2: it
// verifies the transaction's structure and signature, then checks its
// nonce and balance against current ledger state. It never mutates state.
func (l *Ledger) ValidateTransaction(tx *core.Transaction) error {
	if err := tx.Verify(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkNonceAndBalanceLocked(tx)
}

// checkNonceAndBalanceLocked implements spec §4.2 steps 4-5. The caller
// must hold l.mu.
func (l *Ledger) checkNonceAndBalanceLocked(tx *core.Transaction) error {
	e := l.entry(tx.From, tx.Asset)
	if tx.Nonce != e.nonce+1 {
		return internalerrors.ErrInvalidNonce
	}
	fee := tx.Fee()
	if e.balance < tx.Amount+fee {
		return internalerrors.ErrInsufficientBalance
	}
	return nil
}
