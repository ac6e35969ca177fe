package noteenc

import (
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

var zeroNonce [chacha20poly1305.NonceSize]byte

// NoteEncryption owns a freshly derived (esk, epk) pair bound to a
// specific note, plus its memo and an optional outgoing viewing key. It
// provides the only API this package exposes for producing encCiphertext
// and outCiphertext, so that a fresh ephemeral key is always used and the
// two ciphertexts stay consistent with each other.
type NoteEncryption struct {
	domain Domain
	epk    any
	esk    any
	note   any
	memo   any
	ovk    any  // used only when hasOVK is true
	hasOVK bool // false means ovk = ⊥
}

// NewNoteEncryption constructs an encryption context for note and memo,
// optionally bound to ovk. It derives esk via domain.DeriveESK(note); for
// a ZIP-212-active domain this must succeed, and NewNoteEncryption panics
// if it does not — per the core's error-handling design, this is a
// caller contract violation, not a recoverable runtime error. Callers
// that need to encrypt a pre-ZIP-212 note must use
// NewNoteEncryptionWithESK instead.
func NewNoteEncryption(domain Domain, ovk any, hasOVK bool, note, memo any) *NoteEncryption {
	esk, ok := domain.DeriveESK(note)
	if !ok {
		panic("noteenc: domain.DeriveESK returned no esk; ZIP-212 must be active to use NewNoteEncryption (use NewNoteEncryptionWithESK for pre-ZIP-212 notes)")
	}
	return &NoteEncryption{
		domain: domain,
		epk:    domain.KADerivePublic(note, esk),
		esk:    esk,
		note:   note,
		memo:   memo,
		ovk:    ovk,
		hasOVK: hasOVK,
	}
}

// NewNoteEncryptionWithESK is the test-only constructor that accepts an
// externally supplied esk, preserved so tests can generate pre-ZIP-212
// ciphertexts and exercise pre-ZIP-212 decryption.
func NewNoteEncryptionWithESK(domain Domain, esk any, ovk any, hasOVK bool, note, memo any) *NoteEncryption {
	return &NoteEncryption{
		domain: domain,
		epk:    domain.KADerivePublic(note, esk),
		esk:    esk,
		note:   note,
		memo:   memo,
		ovk:    ovk,
		hasOVK: hasOVK,
	}
}

// ESK exposes the ephemeral secret key used to encrypt this note.
func (ne *NoteEncryption) ESK() any { return ne.esk }

// EPK exposes the ephemeral public key used to encrypt this note.
func (ne *NoteEncryption) EPK() any { return ne.epk }

// EncryptNotePlaintext produces encCiphertext for this note. AEAD
// encryption cannot fail on well-formed inputs, so this never returns an
// error; a malformed Domain implementation (e.g. a key of the wrong
// length) is a programmer error and panics.
func (ne *NoteEncryption) EncryptNotePlaintext() NoteBytes {
	pkD := ne.domain.GetPkD(ne.note)
	sharedSecret := ne.domain.KAAgreeEnc(ne.esk, pkD)
	key := ne.domain.KDF(sharedSecret, ne.domain.EPKBytes(ne.epk))

	plaintext := ne.domain.NotePlaintextBytes(ne.note, ne.memo)
	buf := plaintext.AsMutBytes()

	aead, err := chacha20poly1305.New(key.KeyBytes())
	if err != nil {
		panic("noteenc: invalid symmetric key from Domain.KDF: " + err.Error())
	}

	sealed := aead.Seal(buf[:0], zeroNonce[:], buf, nil)
	body, tag := sealed[:len(buf)], sealed[len(buf):]

	ct, ok := ne.domain.ParseNoteCiphertextBytes(body, [AEADTagSize]byte(tag))
	if !ok {
		panic("noteenc: Domain.ParseNoteCiphertextBytes rejected a ciphertext of the expected length")
	}
	return ct
}

// EncryptOutgoingPlaintext produces outCiphertext for this note. When ovk
// is present it is derived deterministically from the note; when ovk is
// ⊥, ock and the plaintext are sampled uniformly from rng so that the
// output's size and shape give no indication that ovk was withheld.
func (ne *NoteEncryption) EncryptOutgoingPlaintext(cv, cmx any, rng io.Reader) OutCiphertextBytes {
	var ock OutgoingCipherKey
	var input OutPlaintextBytes

	if ne.hasOVK {
		cmxBytes := ne.domain.ExtractedCommitmentBytes(cmx)
		ock = ne.domain.DeriveOCK(ne.ovk, cv, cmxBytes, ne.domain.EPKBytes(ne.epk))
		input = ne.domain.OutgoingPlaintextBytes(ne.note, ne.esk)
	} else {
		if _, err := io.ReadFull(rng, ock[:]); err != nil {
			panic("noteenc: failed to sample ock: " + err.Error())
		}
		if _, err := io.ReadFull(rng, input[:]); err != nil {
			panic("noteenc: failed to sample outgoing plaintext: " + err.Error())
		}
	}

	aead, err := chacha20poly1305.New(ock[:])
	if err != nil {
		panic("noteenc: invalid outgoing cipher key: " + err.Error())
	}

	var out OutCiphertextBytes
	sealed := aead.Seal(out[:0], zeroNonce[:], input[:], nil)
	copy(out[:], sealed)
	return out
}
