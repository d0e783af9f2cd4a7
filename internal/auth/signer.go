package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// KeySigner signs personal messages with a local secp256k1 key, producing the
// same R || S || V layout a browser wallet returns from personal_sign.
type KeySigner struct {
	key *secp256k1.PrivateKey
}

func NewKeySigner() (*KeySigner, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeySigner{key: key}, nil
}

func KeySignerFromHex(hexKey string) (*KeySigner, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != 32 {
		return nil, errors.New("private key must be 32 bytes")
	}
	return &KeySigner{key: secp256k1.PrivKeyFromBytes(raw)}, nil
}

func (s *KeySigner) Address() string {
	return publicKeyToAddress(s.key.PubKey())
}

func (s *KeySigner) SignMessage(_ context.Context, message string) ([]byte, error) {
	compact := ecdsa.SignCompact(s.key, hashPersonalMessage(message), false)
	sig := make([]byte, signatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig, nil
}
