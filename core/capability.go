package core

// Injected capabilities, per §9 "Placeholder cryptography": hashing and
// signature verification are treated as externally-supplied capabilities
// rather than concrete algorithms, so production code and tests can swap
// implementations without touching the domain logic above them.

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// Hash is an opaque, fixed-width digest.
type Hash [32]byte

// Hex renders the digest as a hex string.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// Short returns a shortened hex form, handy for log lines.
func (h Hash) Short() string {
	full := h.Hex()
	return full[:4] + ".." + full[len(full)-4:]
}

// Hasher is the collision-resistant hash capability used to derive
// tx_id/tx_hash/execution_hash values (§6.1). Callers of the core must
// not assume a specific algorithm.
type Hasher interface {
	Hash(parts ...[]byte) Hash
}

// Sha256Hasher is the production Hasher: H(x) = SHA-256(x_1 || x_2 || ...).
type Sha256Hasher struct{}

func (Sha256Hasher) Hash(parts ...[]byte) Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// SignatureVerifier is the opaque signature predicate used by the
// Wallet Engine (§4.3, §6.1). It is deliberately abstract: the core
// treats it as an external collaborator so tests can substitute a
// deterministic stand-in.
type SignatureVerifier interface {
	Verify(message, signature []byte, owner Address) bool
}

// AlwaysValidVerifier accepts any non-empty signature. It is intended
// for tests that want to exercise the wallet engine's state machine
// without wiring real cryptography.
type AlwaysValidVerifier struct{}

func (AlwaysValidVerifier) Verify(_, signature []byte, _ Address) bool {
	return len(signature) > 0
}

// AlwaysInvalidVerifier rejects every signature; useful for exercising
// the AuthorizationFailure path deterministically.
type AlwaysInvalidVerifier struct{}

func (AlwaysInvalidVerifier) Verify(_, _ []byte, _ Address) bool { return false }

// HMACLikeVerifier is a deterministic stand-in that "verifies" a
// signature by checking that its raw bytes equal the Hasher digest
// (SHA-256 by default) of message||owner.
// This is not real cryptography - per §1/§9 the core only defines the
// contract surface - but it lets tests exercise both accept and reject
// paths without a fixed oracle.
type HMACLikeVerifier struct {
	Hasher Hasher
}

func (v HMACLikeVerifier) Verify(message, signature []byte, owner Address) bool {
	h := v.Hasher
	if h == nil {
		h = Sha256Hasher{}
	}
	want := h.Hash(message, []byte(owner))
	return hex.EncodeToString(signature) == want.Hex()
}

// IDGenerator produces collision-resistant identifiers; the Bonus Engine
// draws its bonus IDs from it (tx hashes are derived with the Hasher
// instead). The production implementation is backed by
// github.com/google/uuid; tests may substitute a sequential generator
// for deterministic assertions.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequentialIDGenerator is a deterministic test IDGenerator.
type SequentialIDGenerator struct {
	prefix string
	n      uint64
}

// NewSequentialIDGenerator builds a generator that yields
// "<prefix>-1", "<prefix>-2", ... in call order.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) NewID() string {
	g.n++
	return idWithSeq(g.prefix, g.n)
}

func idWithSeq(prefix string, n uint64) string {
	const digits = "0123456789"
	buf := []byte{}
	if n == 0 {
		buf = []byte{'0'}
	}
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return prefix + "-" + string(buf)
}
