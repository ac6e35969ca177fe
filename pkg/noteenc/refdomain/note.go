// Package refdomain is a minimal, concrete noteenc.Domain implementation
// built on X25519, HKDF-SHA3-256, and ChaCha20-Poly1305. It is explicitly
// not Sapling or Orchard: it stands in for whichever Jubjub/Pallas-based
// protocol domain a real deployment would supply, so that the protocol-
// agnostic engine in pkg/noteenc has a live domain to round-trip, tamper,
// and batch-decrypt against in this repo's own tests and demo command.
package refdomain

import (
	"crypto/subtle"

	"github.com/shielded/noteenc/pkg/noteenc"
)

// Field widths for this domain's note plaintext encoding:
//
//	compact = version(1) || rseed(32) || value(8)            = 41 bytes
//	memo                                                      = 512 bytes
//	full plaintext  = compact || memo                        = 553 bytes
//	full ciphertext = full plaintext || AEAD tag(16)          = 569 bytes
//	compact ciphertext = compact, raw ChaCha20 keystream only = 41 bytes
const (
	versionSize     = 1
	rseedSize       = 32
	valueSize       = 8
	CompactSize     = versionSize + rseedSize + valueSize
	MemoSize        = 512
	PlaintextSize   = CompactSize + MemoSize
	CiphertextSize  = PlaintextSize + noteenc.AEADTagSize
	noteVersionByte = 0x02
)

// Recipient is this domain's diversified address: just the diversified
// transmission key, since refdomain has no separate diversifier.
type Recipient [32]byte

// Memo is a fixed 512-byte memo field.
type Memo [MemoSize]byte

// Note is this domain's note: a diversified transmission key, a value,
// and an optional deterministic rseed. A nil Rseed simulates a
// pre-ZIP-212 note with no deterministic esk.
type Note struct {
	PkD   [32]byte
	Value uint64
	Rseed *[32]byte
}

// ESK is an ephemeral secret key: an X25519 scalar.
type ESK [32]byte

// ConstantTimeEqual reports whether e and other are equal, in constant
// time. other must be an ESK; any other dynamic type reports false.
func (e ESK) ConstantTimeEqual(other any) bool {
	o, ok := other.(ESK)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare(e[:], o[:]) == 1
}

// EPK is an ephemeral public key: an X25519 curve point encoding.
type EPK [32]byte

// PreparedEPK is EPK after the domain's one-time parse/validate step.
// refdomain has no accelerated representation, so this simply wraps the
// validated bytes.
type PreparedEPK [32]byte

// SharedSecret is the raw X25519 shared point, prior to KDF.
type SharedSecret []byte

// SymmetricKey is the 32-byte ChaCha20-Poly1305 key this domain's KDF
// produces.
type SymmetricKey [32]byte

// KeyBytes satisfies noteenc.SymmetricKeyBytes.
func (k SymmetricKey) KeyBytes() []byte { return k[:] }

// IVK is an incoming viewing key: an X25519 scalar, in this minimal
// domain identical in shape to ESK but used only for decryption.
type IVK [32]byte

// OVK is an outgoing viewing key, used to derive the OutgoingCipherKey
// deterministically from the note and ciphertext metadata.
type OVK [32]byte

// ValueCommitment stands in for a real Pedersen value commitment; this
// domain only needs its byte encoding to feed DeriveOCK's hash input.
type ValueCommitment [32]byte
