package auth

import "testing"

func TestAllowExactMatch(t *testing.T) {
	g := NewTokenGate("s3cret")
	if !g.Allow("s3cret") {
		t.Fatal("expected exact match to be allowed")
	}
}

func TestAllowRejectsMismatch(t *testing.T) {
	g := NewTokenGate("s3cret")
	cases := []string{"", "S3CRET", "s3cret ", " s3cret", "s3cre", "s3cretx"}
	for _, tok := range cases {
		if g.Allow(tok) {
			t.Fatalf("token %q should be rejected", tok)
		}
	}
}

func TestAllowRejectsEverythingWithoutSecret(t *testing.T) {
	g := NewTokenGate("")
	if g.Allow("") {
		t.Fatal("empty token must not match empty secret")
	}
	if g.Allow("anything") {
		t.Fatal("no secret configured, nothing is authorized")
	}
}
