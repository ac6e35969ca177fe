package noteenc

// ConstantTimeEqualer must be implemented by a Domain's EphemeralSecretKey
// type. The note encryption core calls ConstantTimeEqual wherever the
// Zcash protocol spec requires an esk comparison to run in constant time
// (the ZIP 212 esk consistency check in TryOutputRecoveryWithPkdEsk);
// ordinary == is forbidden on that path, so an esk type that does not
// implement this interface fails the check.
type ConstantTimeEqualer interface {
	ConstantTimeEqual(other any) bool
}

// SymmetricKeyBytes must be implemented by a Domain's SymmetricKey type so
// the core can hand the raw key bytes to ChaCha20-Poly1305.
type SymmetricKeyBytes interface {
	KeyBytes() []byte
}

// Domain is the protocol-polymorphism seam described by the Zcash note
// encryption specification: it captures every operation that differs
// between Sapling, Orchard, or any other protocol built on the same
// in-band secret distribution scheme, while the engine in this package
// (NoteEncryption, TryNoteDecryption, ...) implements the parts that are
// shared.
//
// Associated types from the reference design (EphemeralSecretKey,
// EphemeralPublicKey, Note, Recipient, ...) are represented here as `any`
// rather than as Go generic type parameters: a single compiled binary
// only ever instantiates Domain with one concrete protocol, so the
// values flow through this interface and back out to the same concrete
// Domain implementation without this package needing to name their
// types. Implementations are expected to use internally consistent
// concrete types for each method's `any` parameters and document them;
// a mismatch is a Domain-implementation bug, not a runtime condition this
// package guards against (mirroring the "domain-implementation bug, not
// a runtime condition" character of the ShieldedOutput split panic).
type Domain interface {
	// DeriveESK derives the EphemeralSecretKey bound to note. It returns
	// ok=false for a note created prior to the protocol's ZIP-212-style
	// activation, which has no deterministic esk.
	DeriveESK(note any) (esk any, ok bool)

	// GetPkD extracts the DiversifiedTransmissionKey from note.
	GetPkD(note any) (pkD any)

	// PrepareEPK converts an EphemeralPublicKey into its accelerated form
	// for repeated scalar multiplication.
	PrepareEPK(epk any) (prepared any)

	// KADerivePublic computes esk · g_d(note).
	KADerivePublic(note any, esk any) (epk any)

	// KAAgreeEnc performs the sender-side key agreement.
	KAAgreeEnc(esk any, pkD any) (sharedSecret any)

	// KAAgreeDec performs the recipient-side key agreement.
	KAAgreeDec(ivk any, preparedEPK any) (sharedSecret any)

	// KDF derives the SymmetricKey used to encrypt/decrypt the note
	// plaintext. ephemeralKey is the canonical encoding of the
	// EphemeralPublicKey used to derive secret.
	KDF(secret any, ephemeralKey EphemeralKeyBytes) (key SymmetricKeyBytes)

	// NotePlaintextBytes encodes note and memo as a note plaintext.
	NotePlaintextBytes(note any, memo any) NoteBytes

	// DeriveOCK derives the OutgoingCipherKey for an encrypted note.
	DeriveOCK(ovk any, cv any, cmxBytes ExtractedCommitmentBytes, ephemeralKey EphemeralKeyBytes) OutgoingCipherKey

	// OutgoingPlaintextBytes encodes pk_d ‖ esk as the outgoing plaintext.
	OutgoingPlaintextBytes(note any, esk any) OutPlaintextBytes

	// EPKBytes returns the canonical encoding of epk.
	EPKBytes(epk any) EphemeralKeyBytes

	// EPK attempts to parse ephemeralKey as an EphemeralPublicKey. It
	// returns ok=false for a non-canonical encoding or any other invalid
	// byte string; the core relies on this to fail closed on malformed
	// outputs before touching any AEAD.
	EPK(ephemeralKey EphemeralKeyBytes) (epk any, ok bool)

	// Cmx derives the ExtractedCommitment for note.
	Cmx(note any) (cmx any)

	// ExtractedCommitmentBytes returns the canonical 32-byte view of cmx.
	ExtractedCommitmentBytes(cmx any) ExtractedCommitmentBytes

	// ParseNotePlaintextWithoutMemoIVK parses the compact portion of a
	// note plaintext from the recipient's perspective. &self-equivalent:
	// implementations receive the Domain value itself so they can
	// enforce context-dependent rules (e.g. a ZIP-212 activation height)
	// the Domain was constructed with.
	ParseNotePlaintextWithoutMemoIVK(ivk any, compact NoteBytes) (note any, recipient any, ok bool)

	// ParseNotePlaintextWithoutMemoOVK is the sender-side analogue of
	// ParseNotePlaintextWithoutMemoIVK.
	ParseNotePlaintextWithoutMemoOVK(pkD any, compact NoteBytes) (note any, recipient any, ok bool)

	// SplitPlaintextAtMemo splits a note plaintext into its compact part
	// (note fields without the memo) and the memo.
	SplitPlaintextAtMemo(plaintext NoteBytes) (compact NoteBytes, memo any, ok bool)

	// ExtractPkD parses the DiversifiedTransmissionKey field of an
	// outgoing plaintext.
	ExtractPkD(out OutPlaintextBytes) (pkD any, ok bool)

	// ExtractESK parses the EphemeralSecretKey field of an outgoing
	// plaintext.
	ExtractESK(out OutPlaintextBytes) (esk any, ok bool)

	// ParseNotePlaintextBytes parses a raw slice into a NotePlaintextBytes
	// of this Domain's width.
	ParseNotePlaintextBytes(plaintext []byte) (NoteBytes, bool)

	// ParseNoteCiphertextBytes parses output ‖ tag into a
	// NoteCiphertextBytes of this Domain's width.
	ParseNoteCiphertextBytes(output []byte, tag [AEADTagSize]byte) (NoteBytes, bool)

	// ParseCompactNotePlaintextBytes parses a raw slice into a
	// CompactNotePlaintextBytes of this Domain's width.
	ParseCompactNotePlaintextBytes(plaintext []byte) (NoteBytes, bool)

	// CheapCheck runs a cheap, pre-AEAD sanity check over output (for
	// example, ciphertext-length or ephemeral-key-encoding checks) so
	// callers can fail fast before paying for a full trial decryption.
	// A Domain that has no such optimization returns true unconditionally;
	// returning false here is equivalent to, and collapses into, the
	// ordinary decryption failure path — it never changes which outputs
	// are ultimately decryptable.
	CheapCheck(output ShieldedOutput) bool
}

// BatchDomain is the optional extension a Domain implements to override
// kdf and epk with amortized batch computation (e.g. batched field
// inversion when parsing many ephemeral keys at once). Positions in the
// returned slices align one-for-one with positions in the input; a nil
// SharedSecret (or a failed EPK parse) at position i must produce a nil
// result at position i in the corresponding output slice.
//
// RunBatchKDF and RunBatchEPK below provide the non-batched fallback a
// Domain that does not implement BatchDomain gets for free, mirroring how
// the reference design gives batch_kdf/batch_epk default implementations
// that simply loop over the non-batched methods.
type BatchDomain interface {
	Domain

	BatchKDF(items []KDFBatchItem) []SymmetricKeyBytes
	BatchEPK(ephemeralKeys []EphemeralKeyBytes) []EPKBatchResult
}

// KDFBatchItem is one input position for BatchDomain.BatchKDF.
type KDFBatchItem struct {
	Secret       any // nil if key agreement already failed for this item
	EphemeralKey EphemeralKeyBytes
}

// EPKBatchResult is one output position for BatchDomain.BatchEPK.
type EPKBatchResult struct {
	PreparedEPK  any // nil if ephemeralKey failed to parse
	EphemeralKey EphemeralKeyBytes
}

// RunBatchKDF computes Domain.KDF over items, using d's BatchDomain
// implementation if it has one, and a plain per-item loop otherwise.
// A nil Secret at position i always produces a nil result at position i.
func RunBatchKDF(d Domain, items []KDFBatchItem) []SymmetricKeyBytes {
	if bd, ok := d.(BatchDomain); ok {
		return bd.BatchKDF(items)
	}
	out := make([]SymmetricKeyBytes, len(items))
	for i, item := range items {
		if item.Secret == nil {
			continue
		}
		out[i] = d.KDF(item.Secret, item.EphemeralKey)
	}
	return out
}

// RunBatchEPK computes Domain.EPK (and PrepareEPK) over ephemeralKeys,
// using d's BatchDomain implementation if it has one, and a plain
// per-item loop otherwise.
func RunBatchEPK(d Domain, ephemeralKeys []EphemeralKeyBytes) []EPKBatchResult {
	if bd, ok := d.(BatchDomain); ok {
		return bd.BatchEPK(ephemeralKeys)
	}
	out := make([]EPKBatchResult, len(ephemeralKeys))
	for i, ek := range ephemeralKeys {
		res := EPKBatchResult{EphemeralKey: ek}
		if epk, ok := d.EPK(ek); ok {
			res.PreparedEPK = d.PrepareEPK(epk)
		}
		out[i] = res
	}
	return out
}
