package core

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// Authorizer checks admin tokens against the configured secret.
type Authorizer struct {
	configured bool
	digest     [blake2b.Size256]byte
}

// NewAuthorizer builds an authorizer for secret. An empty secret disables
// every admin action.
func NewAuthorizer(secret string) *Authorizer {
	if secret == "" {
		return &Authorizer{}
	}
	return &Authorizer{configured: true, digest: blake2b.Sum256([]byte(secret))}
}

// Verify reports whether token equals the configured secret.
// Digests are compared so timing does not depend on the token length.
func (a *Authorizer) Verify(token string) bool {
	if a == nil || !a.configured {
		return false
	}
	got := blake2b.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(got[:], a.digest[:]) == 1
}
