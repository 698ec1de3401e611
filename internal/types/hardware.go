package types

import (
	"context"
)

const (
	BiometricMatch   = "MATCH"
	BiometricNoMatch = "NOMATCH"
)

// Reader is card or biometric reader.
// Implementations must respect ctx deadline and return HardwareError on failure.
type Reader interface {
	Read(ctx context.Context) (string, error)
	String() string
}

type Verdict uint8

const (
	VerdictInvalid Verdict = iota
	VerdictApproved
	VerdictDenied
)

func (v Verdict) String() string {
	switch v {
	case VerdictApproved:
		return "approved"
	case VerdictDenied:
		return "denied"
	}
	return "invalid"
}

// Verifier returns VerificationError when service is unreachable.
type Verifier interface {
	Verify(ctx context.Context, pin, biometric string) (Verdict, error)
}
