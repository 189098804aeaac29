// Package entropy computes the kernel's global entropy scalar:
//
//	Global_Entropy = (Active_Bonded_Magnitude / Total_Supply)
//	               * (Unique_Active_Validators / Optimal_Validator_Count)
//
// Both ratios are computed as Fixed values before multiplication, which
// prevents inflation when validators cartel or supply consolidates.
package entropy

import (
	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// Compute returns the Global_Entropy scalar, a Fixed value in [0, 1].
func Compute(activeBondedMagnitude, totalSupply fixed.Fixed, uniqueActiveValidators, optimalValidatorCount uint64) (fixed.Fixed, error) {
	if totalSupply.IsZero() || optimalValidatorCount == 0 {
		return fixed.Fixed{}, kernelerr.New(kernelerr.DivisionByZero)
	}

	bondedRatio, err := activeBondedMagnitude.DivScaled(totalSupply)
	if err != nil {
		return fixed.Fixed{}, err
	}

	uniqueValFixed, err := fixed.FromUnits(uniqueActiveValidators)
	if err != nil {
		return fixed.Fixed{}, err
	}
	optimalValFixed, err := fixed.FromUnits(optimalValidatorCount)
	if err != nil {
		return fixed.Fixed{}, err
	}
	validatorRatio, err := uniqueValFixed.DivScaled(optimalValFixed)
	if err != nil {
		return fixed.Fixed{}, err
	}

	return bondedRatio.MulScaled(validatorRatio)
}
