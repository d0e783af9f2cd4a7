package auth

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
	"github.com/ShaileshBisht/DecentraLink/internal/shared/wallet"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	personalMessagePrefix = "\x19Ethereum Signed Message:\n"
	signatureLength       = 65
	compactHeaderBase     = 27
)

// Verifier checks EIP-191 personal_sign signatures.
type Verifier struct{}

// Verify reports whether signature over message was produced by claimedAddress.
// A well-formed signature from another key yields false with a nil error;
// malformed input yields errs.ErrInvalidSignature.
func (Verifier) Verify(message string, signature []byte, claimedAddress string) (bool, error) {
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false, err
	}
	return wallet.Equal(recovered, claimedAddress), nil
}

// RecoverAddress returns the lowercase address that signed message.
// signature is R || S || V with V in {0, 1, 27, 28}.
func RecoverAddress(message string, signature []byte) (string, error) {
	if len(signature) != signatureLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrInvalidSignature, signatureLength, len(signature))
	}
	v := signature[64]
	if v >= compactHeaderBase {
		v -= compactHeaderBase
	}
	if v > 1 {
		return "", fmt.Errorf("%w: unsupported recovery id %d", errs.ErrInvalidSignature, signature[64])
	}

	compact := make([]byte, signatureLength)
	compact[0] = compactHeaderBase + v
	copy(compact[1:], signature[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hashPersonalMessage(message))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidSignature, err)
	}
	return publicKeyToAddress(pub), nil
}

// DecodeSignature parses a hex signature with or without the 0x prefix.
func DecodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSignature, err)
	}
	return raw, nil
}

func hashPersonalMessage(message string) []byte {
	return keccak256([]byte(personalMessagePrefix + strconv.Itoa(len(message)) + message))
}

func publicKeyToAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()
	return "0x" + hex.EncodeToString(keccak256(raw[1:])[12:])
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
