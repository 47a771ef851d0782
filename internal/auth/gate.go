package auth

// Gate authorizes administrative requests against a single shared secret.
// The contract is deliberately narrow ((token) -> allowed) so a real
// identity/session system can replace it without touching call sites.
type Gate interface {
	Allow(token string) bool
}

// TokenGate compares the caller-supplied token with a configured secret.
// Comparison is exact: case-sensitive, no trimming, no hashing, no expiry.
type TokenGate struct {
	secret string
}

// NewTokenGate builds a gate for the given secret. An empty secret means
// nothing is authorized; it never means "allow everyone".
func NewTokenGate(secret string) *TokenGate {
	return &TokenGate{secret: secret}
}

func (g *TokenGate) Allow(token string) bool {
	return g.secret != "" && token == g.secret
}
