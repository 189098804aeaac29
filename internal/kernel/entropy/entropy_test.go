package entropy

import (
	"testing"

	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

func TestComputeRejectsZeroTotalSupply(t *testing.T) {
	bonded, _ := fixed.FromUnits(10)
	_, err := Compute(bonded, fixed.Zero(), 1, 1)
	kerr, ok := err.(*kernelerr.Error)
	if !ok || kerr.Kind != kernelerr.DivisionByZero {
		t.Fatalf("got %v", err)
	}
}

func TestComputeRejectsZeroOptimalCount(t *testing.T) {
	bonded, _ := fixed.FromUnits(10)
	supply, _ := fixed.FromUnits(100)
	_, err := Compute(bonded, supply, 1, 0)
	kerr, ok := err.(*kernelerr.Error)
	if !ok || kerr.Kind != kernelerr.DivisionByZero {
		t.Fatalf("got %v", err)
	}
}

func TestComputeFullParticipationYieldsFullRatio(t *testing.T) {
	bonded, _ := fixed.FromUnits(100)
	supply, _ := fixed.FromUnits(100)
	got, err := Compute(bonded, supply, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	one, _ := fixed.FromUnits(1)
	if got.Cmp(one) != 0 {
		t.Fatalf("full bonding and full validator participation must yield entropy 1, got %s", got.Raw())
	}
}

func TestComputeHalfParticipationYieldsQuarter(t *testing.T) {
	bonded, _ := fixed.FromUnits(50)
	supply, _ := fixed.FromUnits(100)
	got, err := Compute(bonded, supply, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	// 0.5 * 0.5 = 0.25
	quarter, _ := fixed.FromRawUint64(fixed.Scale / 4)
	if got.Cmp(quarter) != 0 {
		t.Fatalf("got %s want %s", got.Raw(), quarter.Raw())
	}
}
