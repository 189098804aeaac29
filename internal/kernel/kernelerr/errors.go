// Package kernelerr defines the canonical error taxonomy for all state
// transition failures in the kernel. The core returns a single tagged
// error on any failure: no partial mutation, no panics, no payload
// beyond the kind.
package kernelerr

// Kind identifies the class of failure. Ordering of checks that raise
// each kind is fixed by the call order inside the transition package,
// not by any priority encoded here, so that identical inputs produce
// identical kinds across conforming implementations.
type Kind int

const (
	// MathOverflow: checked arithmetic returned none — overflow or underflow.
	MathOverflow Kind = iota
	// DivisionByZero: denominator guard triggered.
	DivisionByZero
	// InvalidSerialization: JSON grammar, ordering, or schema violation.
	InvalidSerialization
	// DuplicateKey: repeated object key within canonical JSON.
	DuplicateKey
	// InvalidMerkleWitness: path depth exceeded MAX_MERKLE_DEPTH or verification failed.
	InvalidMerkleWitness
	// InvalidVdfProof: reserved for the future VDF verifier.
	InvalidVdfProof
	// InvalidSignature: Ed25519 failure or quorum shortfall.
	InvalidSignature
	// BondTooSmall: VouchBond magnitude below MIN_BOND_MAGNITUDE.
	BondTooSmall
	// PayloadLimitExceeded: a cap on payloads, leaves, or signatures was exceeded.
	PayloadLimitExceeded
	// FraudWindowExpired: a FraudProof referenced an epoch outside the fraud window.
	FraudWindowExpired
	// KernelHashMismatch: snapshot kernel hash diverges from the current kernel.
	KernelHashMismatch
	// NotImplemented: a documented future extension point that has not been specified yet.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case MathOverflow:
		return "math_overflow"
	case DivisionByZero:
		return "division_by_zero"
	case InvalidSerialization:
		return "invalid_serialization"
	case DuplicateKey:
		return "duplicate_key"
	case InvalidMerkleWitness:
		return "invalid_merkle_witness"
	case InvalidVdfProof:
		return "invalid_vdf_proof"
	case InvalidSignature:
		return "invalid_signature"
	case BondTooSmall:
		return "bond_too_small"
	case PayloadLimitExceeded:
		return "payload_limit_exceeded"
	case FraudWindowExpired:
		return "fraud_window_expired"
	case KernelHashMismatch:
		return "kernel_hash_mismatch"
	case NotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// Error is the kernel's sole error type. It carries no payload beyond
// the kind: two errors of the same kind are considered equal by
// conforming implementations, which is why Error implements a plain
// value Is rather than wrapping arbitrary detail.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	return "kernel: " + e.Kind.String()
}

// Is reports whether target is a *Error with the same Kind, so callers
// can use errors.Is(err, kernelerr.New(kernelerr.InvalidSignature)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an Error of the given kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}
