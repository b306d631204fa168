package token

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("secret", NewMemoryRevoker(), Options{})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	signed, jti, err := issuer.New("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a token id")
	}

	claims, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID != jti {
		t.Fatalf("jti mismatch: %s vs %s", claims.TokenID, jti)
	}
	if claims.Expires.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("default expiry should be about 7 days out, got %v", claims.Expires)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewIssuer("secret-a", nil, Options{})
	other, _ := NewIssuer("secret-b", nil, Options{})

	signed, _, err := issuer.New("user-1", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := other.Verify(signed); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer, _ := NewIssuer("secret", nil, Options{})
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(tok); err == nil {
			t.Fatalf("expected error for %q", tok)
		}
	}
}

func TestRevocation(t *testing.T) {
	issuer, err := NewIssuer("secret", NewMemoryRevoker(), Options{})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	signed, _, err := issuer.New("user-1", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := issuer.Revoke(signed); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := issuer.Verify(signed); err == nil {
		t.Fatal("revoked token must not verify")
	}
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	revoker := NewRedisRevoker(mr.Addr(), "")

	if err := revoker.Revoke("jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := revoker.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !revoked {
		t.Fatal("jti-1 should be revoked")
	}
	revoked, err = revoker.IsRevoked("jti-2")
	if err != nil {
		t.Fatalf("check other: %v", err)
	}
	if revoked {
		t.Fatal("jti-2 should not be revoked")
	}

	// After the TTL passes, the marker is gone.
	mr.FastForward(2 * time.Minute)
	revoked, err = revoker.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("check after expiry: %v", err)
	}
	if revoked {
		t.Fatal("revocation should expire with the token")
	}
}
