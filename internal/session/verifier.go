package session

import "crypto/subtle"

// Verifier decides whether an admin code is valid.
type Verifier interface {
	Verify(code string) bool
}

// StaticCode accepts exactly one configured code. The empty code accepts
// nothing.
type StaticCode string

func (c StaticCode) Verify(code string) bool {
	if c == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c), []byte(code)) == 1
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(code string) bool

func (f VerifierFunc) Verify(code string) bool { return f(code) }
