package fraud

import (
	"bytes"

	"github.com/google/btree"

	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// slashedKey is a BTree item tracking one validator pubkey already
// slashed in the current epoch. google/btree (rather than a plain map)
// gives deterministic ascending iteration over slashed validators, which
// matters when slashing events are themselves later included in a
// canonical witness.
type slashedKey [32]byte

func (a slashedKey) Less(than btree.Item) bool {
	return bytes.Compare(a[:], than.(slashedKey)[:]) < 0
}

// SlashingLedger tracks, for a single epoch, which validators have
// already been slashed — at most one slash per validator per epoch.
// Slashing is purely subtractive: it uses SaturatingSubForSlash only, so
// a penalty can never push a balance negative or fail outright, and the
// dust lost to clamping is burned, never redistributed.
type SlashingLedger struct {
	slashed *btree.BTree
}

// NewSlashingLedger returns an empty ledger for one epoch.
func NewSlashingLedger() *SlashingLedger {
	return &SlashingLedger{slashed: btree.New(32)}
}

// ApplySlash penalizes balance by amount for validatorPubkey, returning
// the clamped post-slash balance. Returns kernelerr.InvalidSignature if
// this validator has already been slashed this epoch — the constitutional
// one-slash-per-validator-per-epoch limit is indistinguishable in kind
// from a signature-layer integrity violation: both reject a witness that
// claims authority it does not have.
func (l *SlashingLedger) ApplySlash(validatorPubkey [32]byte, balance, amount fixed.Fixed) (fixed.Fixed, error) {
	key := slashedKey(validatorPubkey)
	if l.slashed.Has(key) {
		return fixed.Fixed{}, kernelerr.New(kernelerr.InvalidSignature)
	}
	l.slashed.ReplaceOrInsert(key)
	return balance.SaturatingSubForSlash(amount), nil
}

// SlashedCount returns how many distinct validators have been slashed so
// far this epoch.
func (l *SlashingLedger) SlashedCount() int {
	return l.slashed.Len()
}

// SlashedValidators returns the slashed pubkeys in ascending order.
func (l *SlashingLedger) SlashedValidators() [][32]byte {
	out := make([][32]byte, 0, l.slashed.Len())
	l.slashed.Ascend(func(item btree.Item) bool {
		out = append(out, [32]byte(item.(slashedKey)))
		return true
	})
	return out
}
