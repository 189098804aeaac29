package emission

import "github.com/certen/kernel-validator/internal/kernel/fixed"

// SublinearBondEmission implements the constitutional emission formula:
//
//	minted = isqrt[(Bond_Magnitude * Lock_Duration) / SCALE] * Global_Entropy
//
// The square root makes minting sublinear in bond size, discouraging
// whale concentration, while the entropy factor ties issuance to genuine
// network participation. ValidatorFeeBps is the fraction of total minted
// redirected to the active committee, in basis points (1/100 of 1%).
type SublinearBondEmission struct {
	ValidatorFeeBps uint64
}

func (p SublinearBondEmission) CalculateBondMint(bondMagnitude fixed.Fixed, lockDurationEpochs uint64, globalEntropy fixed.Fixed) (fixed.Fixed, error) {
	sqrtTerm, err := bondMagnitude.IsqrtOverDurationScaled(lockDurationEpochs)
	if err != nil {
		return fixed.Fixed{}, err
	}
	return sqrtTerm.MulScaled(globalEntropy)
}

func (p SublinearBondEmission) CalculateValidatorFee(totalEpochMinted fixed.Fixed) (fixed.Fixed, error) {
	bps, err := fixed.FromRawUint64(p.ValidatorFeeBps * fixed.Scale / 10000)
	if err != nil {
		return fixed.Fixed{}, err
	}
	return totalEpochMinted.MulScaled(bps)
}

var _ Policy = SublinearBondEmission{}
