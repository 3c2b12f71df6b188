package domain

// AuthMethod describes how a caller authenticated with the gateway.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity captures normalized caller identity independent of auth mechanism.
// For JWT callers the ID is the token subject; for anonymous callers it is
// the opaque generated token the browser persists and replays.
type Identity struct {
	ID         string
	AuthMethod AuthMethod
	Subject    string
	Issuer     string
	Email      string
}

// IsAnonymous reports whether the identity came from a generated token
// rather than an authenticated subject.
func (i Identity) IsAnonymous() bool {
	return i.AuthMethod == AuthMethodAnonymous
}
