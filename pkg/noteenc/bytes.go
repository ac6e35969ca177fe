// Package noteenc implements the protocol-agnostic in-band secret
// distribution scheme shared by Zcash-style shielded protocols: a sender
// encrypts a note plus memo into a ciphertext attached to a transaction
// output, a recipient holding an incoming viewing key trial-decrypts every
// output to discover payments, and the original sender, holding an
// outgoing viewing key, can later recover what they sent.
//
// The package does not know about any particular protocol's group
// arithmetic or note serialization. It is parameterized by the Domain
// interface, which a concrete protocol (Sapling, Orchard, or a test
// domain) implements.
package noteenc

import (
	"crypto/subtle"
)

// AEADTagSize is the length in bytes of the ChaCha20-Poly1305 tag appended
// to every note and outgoing ciphertext.
const AEADTagSize = 16

// OutPlaintextSize is the length of the outgoing plaintext: the
// diversified transmission key followed by the ephemeral secret key.
const OutPlaintextSize = 32 + 32

// OutCiphertextSize is OutPlaintextSize plus one AEAD tag.
const OutCiphertextSize = OutPlaintextSize + AEADTagSize

// NoteBytes is the capability a domain-specific, variable-width byte
// buffer must provide: read access, in-place mutable access (for
// AEAD decrypt-in-place), and a stable length. Note plaintexts, note
// ciphertexts, and their compact counterparts all satisfy this through
// the Bytes type below; a Domain only needs to pick the right width.
type NoteBytes interface {
	AsBytes() []byte
	AsMutBytes() []byte
}

// Bytes is the default, length-parameterized NoteBytes implementation.
// A single Domain typically uses four differently-sized instances of it:
// one each for the note plaintext, note ciphertext, compact plaintext, and
// compact ciphertext.
type Bytes struct {
	data []byte
}

// AsBytes returns the buffer's contents.
func (b Bytes) AsBytes() []byte { return b.data }

// AsMutBytes returns the buffer for in-place mutation (e.g. AEAD decrypt).
func (b Bytes) AsMutBytes() []byte { return b.data }

// Len reports the buffer's fixed width.
func (b Bytes) Len() int { return len(b.data) }

// NewBytesFromSlice builds a Bytes of exactly size bytes, copying src.
// It fails (ok=false) if len(src) != size.
func NewBytesFromSlice(size int, src []byte) (out Bytes, ok bool) {
	if len(src) != size {
		return Bytes{}, false
	}
	data := make([]byte, size)
	copy(data, src)
	return Bytes{data: data}, true
}

// NewBytesFromSliceWithTag builds a Bytes of exactly size bytes by
// concatenating body and tag. It fails if len(body)+len(tag) != size.
func NewBytesFromSliceWithTag(size int, body, tag []byte) (out Bytes, ok bool) {
	bodyLen := size - len(tag)
	if bodyLen < 0 || len(body) != bodyLen {
		return Bytes{}, false
	}
	data := make([]byte, size)
	copy(data, body)
	copy(data[bodyLen:], tag)
	return Bytes{data: data}, true
}

// EphemeralKeyBytes is the canonical 32-byte encoding of a Domain's
// EphemeralPublicKey, as stored on a transaction output.
type EphemeralKeyBytes [32]byte

// ConstantTimeEqual reports whether e and other are equal, in constant
// time with respect to their contents.
func (e EphemeralKeyBytes) ConstantTimeEqual(other EphemeralKeyBytes) bool {
	return subtle.ConstantTimeCompare(e[:], other[:]) == 1
}

// OutgoingCipherKey is the 32-byte key used to encrypt/decrypt the
// outgoing plaintext.
type OutgoingCipherKey [32]byte

// OutPlaintextBytes is the fixed 64-byte outgoing plaintext:
// pk_d (32 bytes) followed by esk (32 bytes).
type OutPlaintextBytes [OutPlaintextSize]byte

// OutCiphertextBytes is the fixed 80-byte encrypted outgoing plaintext:
// OutPlaintextBytes encrypted in place, followed by the AEAD tag.
type OutCiphertextBytes [OutCiphertextSize]byte

// ExtractedCommitmentBytes is the canonical 32-byte view of a Domain's
// ExtractedCommitment (cmu for Sapling, cmx for Orchard).
type ExtractedCommitmentBytes [32]byte

// ConstantTimeEqual reports whether c and other are equal, in constant
// time with respect to their contents.
func (c ExtractedCommitmentBytes) ConstantTimeEqual(other ExtractedCommitmentBytes) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}
