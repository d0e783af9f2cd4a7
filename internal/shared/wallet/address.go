package wallet

import (
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes a wallet address to lowercase with surrounding
// whitespace removed. It does not validate.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsAddress reports whether addr is a 0x-prefixed 20-byte hex address in any case.
func IsAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if len(addr) != 42 || !(strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X")) {
		return false
	}
	_, err := hex.DecodeString(addr[2:])
	return err == nil
}

// Equal compares two addresses case-insensitively.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
