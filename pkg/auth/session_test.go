package auth

import (
	"strings"
	"testing"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := SessionSecretBytes("test-secret")
	token := CreateSessionToken("user-123", secret)

	userID, err := VerifySessionToken(token, secret)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if userID != "user-123" {
		t.Errorf("expected user-123, got %q", userID)
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	token := CreateSessionToken("user-123", SessionSecretBytes("secret-a"))

	if _, err := VerifySessionToken(token, SessionSecretBytes("secret-b")); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestVerifySessionToken_TamperedPayload(t *testing.T) {
	secret := SessionSecretBytes("test-secret")
	token := CreateSessionToken("user-123", secret)
	other := CreateSessionToken("user-456", secret)

	// Splice the signature of one token onto the payload of another.
	parts := strings.SplitN(token, ".", 2)
	otherParts := strings.SplitN(other, ".", 2)
	forged := otherParts[0] + "." + parts[1]

	if _, err := VerifySessionToken(forged, secret); err == nil {
		t.Fatal("expected verification to fail for a forged token")
	}
}

func TestVerifySessionToken_Malformed(t *testing.T) {
	secret := SessionSecretBytes("test-secret")
	for _, token := range []string{"", "no-dot", "!!.sig"} {
		if _, err := VerifySessionToken(token, secret); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}

func TestSessionSecretBytes_PadsShortSecrets(t *testing.T) {
	b := SessionSecretBytes("short")
	if len(b) < 32 {
		t.Errorf("expected at least 32 bytes, got %d", len(b))
	}
	long := strings.Repeat("x", 48)
	if got := SessionSecretBytes(long); len(got) != 48 {
		t.Errorf("expected long secrets untouched, got %d bytes", len(got))
	}
}
