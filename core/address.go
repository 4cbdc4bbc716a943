package core

// Address canonicalisation for the USDTgVerse runtime.
//
// An address is an opaque, bounded textual identifier. Two forms are
// recognised: the legacy "0x"-prefixed hex form (20-byte accounts, kept
// for compatibility with external EVM-style tooling) and the native
// "usdtg1"-prefixed form produced by derive_wallet_address. Equality is
// always byte-exact on the canonical string - no case folding is
// performed beyond what canonicalisation already does.

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

const (
	legacyPrefix = "0x"
	nativePrefix = "usdtg1"

	minAddressLen = len(legacyPrefix) + 8
	maxAddressLen = 90
)

// Address is a canonicalised account/wallet identifier.
type Address string

// AddressZero is the sentinel empty address; no ledger operation ever
// treats it as a valid participant.
const AddressZero Address = ""

// ValidateAddress reports whether s parses as one of the recognised
// canonical forms.
func ValidateAddress(s string) bool {
	if len(s) < minAddressLen || len(s) > maxAddressLen {
		return false
	}
	switch {
	case strings.HasPrefix(s, legacyPrefix):
		body := s[len(legacyPrefix):]
		if len(body) != 40 {
			return false
		}
		_, err := hex.DecodeString(body)
		return err == nil
	case strings.HasPrefix(s, nativePrefix):
		body := s[len(nativePrefix):]
		if len(body) == 0 {
			return false
		}
		for _, r := range body {
			if !isLowerAlnum(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isLowerAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')
}

// CanonicalAddress validates and returns s as an Address, rejecting any
// string that does not parse as a recognised form.
func CanonicalAddress(s string) (Address, error) {
	if !ValidateAddress(s) {
		return "", &Error{Kind: ValidationError, Op: "CanonicalAddress", Msg: fmt.Sprintf("malformed address %q", s)}
	}
	return Address(s), nil
}

// DeriveWalletAddress computes a deterministic native address from an
// owner address and a creation nonce, per §6.1: the derivation scheme
// itself is not mandated, only its determinism. This implementation
// follows the teacher wallet's SHA-256 -> RIPEMD-160 public-key-to-address
// pipeline, substituting "owner || nonce" for the public key material.
func DeriveWalletAddress(owner Address, creationNonce uint64) Address {
	buf := make([]byte, 0, len(owner)+8)
	buf = append(buf, owner...)
	buf = append(buf, byte(creationNonce>>56), byte(creationNonce>>48), byte(creationNonce>>40), byte(creationNonce>>32),
		byte(creationNonce>>24), byte(creationNonce>>16), byte(creationNonce>>8), byte(creationNonce))

	sum := sha256.Sum256(buf)
	r := ripemd160.New()
	r.Write(sum[:])
	digest := r.Sum(nil)

	return Address(nativePrefix + hex.EncodeToString(digest))
}

// String implements fmt.Stringer.
func (a Address) String() string { return string(a) }

// IsZero reports whether a is the sentinel empty address.
func (a Address) IsZero() bool { return a == AddressZero }
