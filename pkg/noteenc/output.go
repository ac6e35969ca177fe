package noteenc

// ShieldedOutput is a read-only accessor over a transaction output: the
// ephemeral key, the extracted commitment, and either the full note
// ciphertext or its compact prefix. Decryption functions in this package
// only ever read from it.
type ShieldedOutput interface {
	// EphemeralKey returns the output's ephemeral_key field.
	EphemeralKey() EphemeralKeyBytes

	// Cmx returns the output's cmu/cmx field.
	Cmx() any

	// EncCiphertext returns the full note ciphertext. ok is false iff the
	// output is in compact form.
	EncCiphertext() (ct NoteBytes, ok bool)

	// EncCiphertextCompact returns the compact note ciphertext, which is
	// always available (it is the prefix of the full ciphertext, or the
	// only ciphertext a compact output ever carried).
	EncCiphertextCompact() NoteBytes
}

// CmxBytesOf returns the canonical byte view of output's commitment,
// derived via d. This is the Go equivalent of ShieldedOutput's default
// cmstar_bytes() method in the reference design, which Go interfaces
// cannot express directly since they have no default method bodies.
func CmxBytesOf(d Domain, output ShieldedOutput) ExtractedCommitmentBytes {
	return d.ExtractedCommitmentBytes(output.Cmx())
}

// SplitCiphertextAtTag separates the trailing AEAD tag from an output's
// full note ciphertext. It returns ok=false if the output is compact.
//
// A Domain whose NoteCiphertextBytes width is shorter than AEADTagSize is
// a Domain-implementation bug, not a runtime condition a correctly
// written Domain can trigger; this function panics in that case rather
// than returning false, matching the reference design's documented
// static-only panic.
func SplitCiphertextAtTag(d Domain, output ShieldedOutput) (plaintext NoteBytes, tag [AEADTagSize]byte, ok bool) {
	ct, has := output.EncCiphertext()
	if !has {
		return nil, [AEADTagSize]byte{}, false
	}

	raw := ct.AsBytes()
	tagLoc := len(raw) - AEADTagSize
	if tagLoc < 0 {
		panic("noteenc: Domain's NoteCiphertextBytes is shorter than the AEAD tag")
	}

	body, tail := raw[:tagLoc], raw[tagLoc:]
	var t [AEADTagSize]byte
	copy(t[:], tail)

	pt, parsed := d.ParseNotePlaintextBytes(body)
	if !parsed {
		panic("noteenc: Domain's NoteCiphertextBytes and NotePlaintextBytes are inconsistent")
	}

	return pt, t, true
}
