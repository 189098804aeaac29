package witness

import (
	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// Validate checks the internally-checkable EntropyStats constraints: bonded
// magnitude cannot exceed total supply, and a zero optimal validator count
// would cause a division by zero downstream in entropy computation. All
// other fields are host-trusted — the kernel has no witness covering the
// full validator set in this version.
func (e EntropyStats) Validate() error {
	bonded, err := fixed.FromCanonicalString(e.ActiveBondedMagnitudeRaw)
	if err != nil {
		return err
	}
	total, err := fixed.FromCanonicalString(e.TotalSupplyRaw)
	if err != nil {
		return err
	}
	if bonded.Cmp(total) > 0 {
		return kernelerr.New(kernelerr.MathOverflow)
	}
	if e.OptimalValidatorCount == 0 {
		return kernelerr.New(kernelerr.DivisionByZero)
	}
	return nil
}
