package noteenc

import (
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/chacha20poly1305"
)

// chacha20CompactOffset is the stream byte offset at which compact
// decryption must start. Block 0 of the ChaCha20 keystream is consumed by
// Poly1305's one-time key derivation in the full AEAD path; starting raw
// ChaCha20 at block 1 (byte 64) reproduces the same plaintext bytes the
// full path would produce, without a tag to verify. Starting at block 0
// is silently incorrect and must never be done.
const chacha20CompactOffset = 64

// concatTag builds an explicit body‖tag slice for AEAD.Open, rather than
// relying on append's reallocate-on-overflow behavior against a buffer
// that is also the decrypt-in-place destination.
func concatTag(body []byte, tag []byte) []byte {
	out := make([]byte, len(body)+len(tag))
	copy(out, body)
	copy(out[len(body):], tag)
	return out
}

// noteValidity mirrors the reference design's two-state validity enum so
// the intent of checkNoteValidity's return reads the same way at call
// sites that branch on it.
type noteValidity int

const (
	noteInvalid noteValidity = iota
	noteValid
)

// checkNoteValidity implements the validity check shared by every
// decryption entrypoint (spec section 4.5.4): the note's recomputed
// commitment must match the output's published commitment, and — for a
// ZIP-212-active note — the epk recomputed from the note's derived esk
// must match the ephemeral_key the output actually carried.
func checkNoteValidity(d Domain, note any, ephemeralKey EphemeralKeyBytes, cmxBytes ExtractedCommitmentBytes) noteValidity {
	if !d.ExtractedCommitmentBytes(d.Cmx(note)).ConstantTimeEqual(cmxBytes) {
		return noteInvalid
	}

	derivedESK, ok := d.DeriveESK(note)
	if !ok {
		// Pre-ZIP-212: no deterministic esk to check against.
		return noteValid
	}

	recomputed := d.EPKBytes(d.KADerivePublic(note, derivedESK))
	if recomputed.ConstantTimeEqual(ephemeralKey) {
		return noteValid
	}
	return noteInvalid
}

func parseNotePlaintextWithoutMemoIVK(d Domain, ivk any, ephemeralKey EphemeralKeyBytes, cmxBytes ExtractedCommitmentBytes, compact NoteBytes) (note, recipient any, ok bool) {
	note, recipient, ok = d.ParseNotePlaintextWithoutMemoIVK(ivk, compact)
	if !ok {
		return nil, nil, false
	}
	if checkNoteValidity(d, note, ephemeralKey, cmxBytes) != noteValid {
		return nil, nil, false
	}
	return note, recipient, true
}

// TryNoteDecryption attempts recipient-side decryption and validation of
// output's full note ciphertext using ivk. It fails closed (ok=false) on
// an invalid ephemeral-key encoding, an AEAD authentication failure, a
// malformed plaintext encoding, a commitment mismatch, or a ZIP-212 esk
// mismatch — all of these collapse into the same single silent failure.
func TryNoteDecryption(d Domain, ivk any, output ShieldedOutput) (note, recipient, memo any, ok bool) {
	if !d.CheapCheck(output) {
		return nil, nil, nil, false
	}

	ephemeralKey := output.EphemeralKey()
	epk, ok := d.EPK(ephemeralKey)
	if !ok {
		return nil, nil, nil, false
	}
	prepared := d.PrepareEPK(epk)
	sharedSecret := d.KAAgreeDec(ivk, prepared)
	key := d.KDF(sharedSecret, ephemeralKey)

	return tryNoteDecryptionInner(d, ivk, ephemeralKey, output, key)
}

func tryNoteDecryptionInner(d Domain, ivk any, ephemeralKey EphemeralKeyBytes, output ShieldedOutput, key SymmetricKeyBytes) (note, recipient, memo any, ok bool) {
	plaintext, tag, has := SplitCiphertextAtTag(d, output)
	if !has {
		return nil, nil, nil, false
	}

	aead, err := chacha20poly1305.New(key.KeyBytes())
	if err != nil {
		return nil, nil, nil, false
	}
	buf := plaintext.AsMutBytes()
	if _, err := aead.Open(buf[:0], zeroNonce[:], concatTag(buf, tag[:]), nil); err != nil {
		return nil, nil, nil, false
	}

	compact, memoVal, ok := d.SplitPlaintextAtMemo(plaintext)
	if !ok {
		return nil, nil, nil, false
	}

	noteVal, recipientVal, ok := parseNotePlaintextWithoutMemoIVK(d, ivk, ephemeralKey, CmxBytesOf(d, output), compact)
	if !ok {
		return nil, nil, nil, false
	}
	return noteVal, recipientVal, memoVal, true
}

// TryCompactNoteDecryption is the light-client analogue of
// TryNoteDecryption: it decrypts output's compact ciphertext with raw
// ChaCha20 (no Poly1305 tag to check) and runs the same validity check.
// It never returns a memo, since compact outputs never carry one.
func TryCompactNoteDecryption(d Domain, ivk any, output ShieldedOutput) (note, recipient any, ok bool) {
	if !d.CheapCheck(output) {
		return nil, nil, false
	}

	ephemeralKey := output.EphemeralKey()
	epk, ok := d.EPK(ephemeralKey)
	if !ok {
		return nil, nil, false
	}
	prepared := d.PrepareEPK(epk)
	sharedSecret := d.KAAgreeDec(ivk, prepared)
	key := d.KDF(sharedSecret, ephemeralKey)

	return tryCompactNoteDecryptionInner(d, ivk, ephemeralKey, output, key)
}

func tryCompactNoteDecryptionInner(d Domain, ivk any, ephemeralKey EphemeralKeyBytes, output ShieldedOutput, key SymmetricKeyBytes) (note, recipient any, ok bool) {
	compactCT := output.EncCiphertextCompact()
	plaintext, parsed := d.ParseCompactNotePlaintextBytes(compactCT.AsBytes())
	if !parsed {
		return nil, nil, false
	}

	stream, err := chacha20.NewUnauthenticatedCipher(key.KeyBytes(), zeroNonce[:])
	if err != nil {
		return nil, nil, false
	}
	stream.SetCounter(chacha20CompactOffset / chacha20.BlockSize)

	buf := plaintext.AsMutBytes()
	stream.XORKeyStream(buf, buf)

	return parseNotePlaintextWithoutMemoIVK(d, ivk, ephemeralKey, CmxBytesOf(d, output), plaintext)
}

// BatchTryCompactNoteDecryption fans TryCompactNoteDecryption out across
// every (ivk, output) pair, using the Domain's batched kdf/epk if it
// implements BatchDomain. It is a convenience built entirely from the
// existing BatchDomain contract and TryCompactNoteDecryption's per-output
// logic — not a new decryption algorithm — matching the shape a
// light-client scanner uses to trial-decrypt a block's worth of compact
// outputs against every ivk it watches.
func BatchTryCompactNoteDecryption(d Domain, ivks []any, outputs []ShieldedOutput) []CompactDecryptionResult {
	results := make([]CompactDecryptionResult, 0, len(ivks)*len(outputs))

	ephemeralKeys := make([]EphemeralKeyBytes, len(outputs))
	for i, out := range outputs {
		ephemeralKeys[i] = out.EphemeralKey()
	}
	epkResults := RunBatchEPK(d, ephemeralKeys)

	for _, ivk := range ivks {
		secrets := make([]KDFBatchItem, len(outputs))
		for i, er := range epkResults {
			item := KDFBatchItem{EphemeralKey: er.EphemeralKey}
			if er.PreparedEPK != nil {
				item.Secret = d.KAAgreeDec(ivk, er.PreparedEPK)
			}
			secrets[i] = item
		}
		keys := RunBatchKDF(d, secrets)

		for i, out := range outputs {
			if !d.CheapCheck(out) || keys[i] == nil {
				continue
			}
			note, recipient, ok := tryCompactNoteDecryptionInner(d, ivk, ephemeralKeys[i], out, keys[i])
			if !ok {
				continue
			}
			results = append(results, CompactDecryptionResult{
				IVK:         ivk,
				OutputIndex: i,
				Note:        note,
				Recipient:   recipient,
			})
		}
	}

	return results
}

// CompactDecryptionResult is one hit from BatchTryCompactNoteDecryption.
type CompactDecryptionResult struct {
	IVK         any
	OutputIndex int
	Note        any
	Recipient   any
}

// TryOutputRecoveryWithOvk recovers the full note plaintext the sender
// produced for output, using ovk to first derive the outgoing cipher key.
func TryOutputRecoveryWithOvk(d Domain, ovk any, output ShieldedOutput, cv any, outCiphertext OutCiphertextBytes) (note, recipient, memo any, ok bool) {
	ock := d.DeriveOCK(ovk, cv, CmxBytesOf(d, output), output.EphemeralKey())
	return TryOutputRecoveryWithOck(d, ock, output, outCiphertext)
}

// TryOutputRecoveryWithOck is TryOutputRecoveryWithOvk's second half: it
// decrypts outCiphertext directly under a caller-supplied ock.
func TryOutputRecoveryWithOck(d Domain, ock OutgoingCipherKey, output ShieldedOutput, outCiphertext OutCiphertextBytes) (note, recipient, memo any, ok bool) {
	var body [OutPlaintextSize]byte
	copy(body[:], outCiphertext[:OutPlaintextSize])
	tag := outCiphertext[OutPlaintextSize:]

	aead, err := chacha20poly1305.New(ock[:])
	if err != nil {
		return nil, nil, nil, false
	}
	if _, err := aead.Open(body[:0], zeroNonce[:], concatTag(body[:], tag), nil); err != nil {
		return nil, nil, nil, false
	}

	var outPlaintext OutPlaintextBytes
	copy(outPlaintext[:], body[:])

	pkD, ok := d.ExtractPkD(outPlaintext)
	if !ok {
		return nil, nil, nil, false
	}
	esk, ok := d.ExtractESK(outPlaintext)
	if !ok {
		return nil, nil, nil, false
	}

	return TryOutputRecoveryWithPkdEsk(d, pkD, esk, output)
}

// TryOutputRecoveryWithPkdEsk is TryOutputRecoveryWithOck's second half:
// given the diversified transmission key and ephemeral secret key
// recovered from the outgoing plaintext, it re-derives the note
// encryption key and decrypts output's full note ciphertext.
func TryOutputRecoveryWithPkdEsk(d Domain, pkD, esk any, output ShieldedOutput) (note, recipient, memo any, ok bool) {
	ephemeralKey := output.EphemeralKey()
	sharedSecret := d.KAAgreeEnc(esk, pkD)
	key := d.KDF(sharedSecret, ephemeralKey)

	plaintext, tag, has := SplitCiphertextAtTag(d, output)
	if !has {
		return nil, nil, nil, false
	}

	aead, err := chacha20poly1305.New(key.KeyBytes())
	if err != nil {
		return nil, nil, nil, false
	}
	buf := plaintext.AsMutBytes()
	if _, err := aead.Open(buf[:0], zeroNonce[:], concatTag(buf, tag[:]), nil); err != nil {
		return nil, nil, nil, false
	}

	compact, memoVal, ok := d.SplitPlaintextAtMemo(plaintext)
	if !ok {
		return nil, nil, nil, false
	}

	noteVal, recipientVal, ok := d.ParseNotePlaintextWithoutMemoOVK(pkD, compact)
	if !ok {
		return nil, nil, nil, false
	}

	// ZIP 212: the esk recovered from the outgoing plaintext must match
	// the esk deterministically derivable from the note, if any.
	if derivedESK, hasDerived := d.DeriveESK(noteVal); hasDerived {
		if cte, ok := derivedESK.(ConstantTimeEqualer); ok {
			if !cte.ConstantTimeEqual(esk) {
				return nil, nil, nil, false
			}
		} else {
			return nil, nil, nil, false
		}
	}

	if checkNoteValidity(d, noteVal, ephemeralKey, CmxBytesOf(d, output)) != noteValid {
		return nil, nil, nil, false
	}

	return noteVal, recipientVal, memoVal, true
}
