package auth

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const challengeTemplate = `Welcome to DecentraLink!

Please sign this message to authenticate your wallet and access the platform.

Wallet: %s
Timestamp: %d
Nonce: %s

This signature is used for authentication only and does not authorize any transactions.`

// Challenge is the structured content of a sign-in message.
type Challenge struct {
	Wallet   string
	IssuedAt time.Time
	Nonce    string
}

func BuildChallenge(walletAddress string, issuedAt time.Time, nonce string) string {
	return fmt.Sprintf(challengeTemplate, walletAddress, issuedAt.UnixMilli(), nonce)
}

// ParseChallenge extracts the Wallet, Timestamp and Nonce lines. ok is false
// when the message carries no nonce.
func ParseChallenge(message string) (Challenge, bool) {
	var ch Challenge
	sc := bufio.NewScanner(strings.NewReader(message))
	for sc.Scan() {
		key, value, found := strings.Cut(sc.Text(), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Wallet":
			ch.Wallet = value
		case "Timestamp":
			if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
				ch.IssuedAt = time.UnixMilli(ms)
			}
		case "Nonce":
			ch.Nonce = value
		}
	}
	return ch, ch.Nonce != ""
}
