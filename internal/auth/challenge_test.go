package auth

import (
	"strings"
	"testing"
)

func TestBuildAndParseChallenge(t *testing.T) {
	msg := BuildChallenge("0xAbC0000000000000000000000000000000000001", fixedNow, "n0nce")
	if !strings.Contains(msg, "does not authorize any transactions") {
		t.Fatalf("expected disclaimer in challenge")
	}

	ch, ok := ParseChallenge(msg)
	if !ok {
		t.Fatalf("expected nonce")
	}
	if ch.Wallet != "0xAbC0000000000000000000000000000000000001" || ch.Nonce != "n0nce" {
		t.Fatalf("unexpected challenge: %+v", ch)
	}
	if !ch.IssuedAt.Equal(fixedNow) {
		t.Fatalf("unexpected issued at: %v", ch.IssuedAt)
	}
}

func TestParseChallengeWithoutNonce(t *testing.T) {
	if _, ok := ParseChallenge("just sign me"); ok {
		t.Fatalf("expected no nonce")
	}
	ch, ok := ParseChallenge("Nonce: x\nTimestamp: soon")
	if !ok || !ch.IssuedAt.IsZero() {
		t.Fatalf("expected nonce with zero timestamp: %+v", ch)
	}
}
