package refdomain

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/shielded/noteenc/pkg/noteenc"
)

// hkdfInfoESK, hkdfInfoKDF and hkdfInfoOCK are fixed info strings
// separating the three HKDF derivations this domain performs, so none can
// be confused with another.
var (
	hkdfInfoESK = []byte("refdomain-esk-v1")
	hkdfInfoKDF = []byte("refdomain-kdf-v1")
	hkdfInfoOCK = []byte("refdomain-ock-v1")
)

// Domain is the concrete noteenc.Domain (and noteenc.BatchDomain)
// implementation this package provides. It carries no state: every
// method is a pure function of its arguments.
type Domain struct{}

// New returns a Domain. It is a zero-size value; callers may also just
// use Domain{} directly.
func New() Domain { return Domain{} }

// NewAccountID mints an opaque identifier for a test fixture or demo
// account, with no cryptographic meaning of its own.
func NewAccountID() string { return uuid.NewString() }

func deriveScalar(secret, info []byte) [32]byte {
	r := hkdf.New(sha3.New256, secret, nil, info)
	var out [32]byte
	if _, err := r.Read(out[:]); err != nil {
		panic("refdomain: hkdf read failed: " + err.Error())
	}
	return out
}

// GenerateKeypair samples a fresh X25519 (ivk, pkD) pair, for use by
// tests and the demo command to stand up a recipient.
func GenerateKeypair() (ivk IVK, pkD [32]byte, err error) {
	var sk [32]byte
	if _, err := rand.Read(sk[:]); err != nil {
		return IVK{}, [32]byte{}, err
	}
	pub, err := curve25519.X25519(sk[:], curve25519.Basepoint)
	if err != nil {
		return IVK{}, [32]byte{}, err
	}
	copy(pkD[:], pub)
	return IVK(sk), pkD, nil
}

// GenerateOVK samples a fresh outgoing viewing key.
func GenerateOVK() (OVK, error) {
	var ovk OVK
	_, err := rand.Read(ovk[:])
	return ovk, err
}

func (Domain) DeriveESK(note any) (esk any, ok bool) {
	n := note.(*Note)
	if n.Rseed == nil {
		return nil, false
	}
	return ESK(deriveScalar(n.Rseed[:], hkdfInfoESK)), true
}

func (Domain) GetPkD(note any) any {
	return note.(*Note).PkD
}

func (Domain) PrepareEPK(epk any) any {
	return PreparedEPK(epk.(EPK))
}

func (Domain) KADerivePublic(note any, esk any) any {
	s := esk.(ESK)
	pub, err := curve25519.X25519(s[:], curve25519.Basepoint)
	if err != nil {
		panic("refdomain: X25519 base point multiplication failed: " + err.Error())
	}
	var epk EPK
	copy(epk[:], pub)
	return epk
}

func (Domain) KAAgreeEnc(esk any, pkD any) any {
	s := esk.(ESK)
	p := pkD.([32]byte)
	secret, err := curve25519.X25519(s[:], p[:])
	if err != nil {
		// Untyped nil, not SharedSecret(nil): callers that compare an
		// any-typed secret against nil (the BatchDomain contract) must see
		// a true nil here, not an interface wrapping a nil slice.
		return nil
	}
	return SharedSecret(secret)
}

func (Domain) KAAgreeDec(ivk any, preparedEPK any) any {
	k := ivk.(IVK)
	p := preparedEPK.(PreparedEPK)
	secret, err := curve25519.X25519(k[:], p[:])
	if err != nil {
		return nil
	}
	return SharedSecret(secret)
}

func (Domain) KDF(secret any, ephemeralKey noteenc.EphemeralKeyBytes) noteenc.SymmetricKeyBytes {
	s := secret.(SharedSecret)
	info := append(append([]byte{}, hkdfInfoKDF...), ephemeralKey[:]...)
	return SymmetricKey(deriveScalar(s, info))
}

func encodeCompact(note *Note) [CompactSize]byte {
	var out [CompactSize]byte
	if note.Rseed != nil {
		out[0] = noteVersionByte
		copy(out[versionSize:versionSize+rseedSize], note.Rseed[:])
	} else {
		out[0] = 0x01
	}
	binary.LittleEndian.PutUint64(out[versionSize+rseedSize:], note.Value)
	return out
}

func decodeCompact(data []byte) *Note {
	n := &Note{}
	version := data[0]
	value := binary.LittleEndian.Uint64(data[versionSize+rseedSize:])
	n.Value = value
	if version == noteVersionByte {
		var rseed [32]byte
		copy(rseed[:], data[versionSize:versionSize+rseedSize])
		n.Rseed = &rseed
	}
	return n
}

func (Domain) NotePlaintextBytes(note any, memo any) noteenc.NoteBytes {
	n := note.(*Note)
	m := memo.(Memo)
	compact := encodeCompact(n)
	out, ok := noteenc.NewBytesFromSlice(PlaintextSize, append(append([]byte{}, compact[:]...), m[:]...))
	if !ok {
		panic("refdomain: plaintext assembly produced the wrong width")
	}
	return out
}

func (Domain) DeriveOCK(ovk any, cv any, cmxBytes noteenc.ExtractedCommitmentBytes, ephemeralKey noteenc.EphemeralKeyBytes) noteenc.OutgoingCipherKey {
	o := ovk.(OVK)
	v := cv.(ValueCommitment)
	input := make([]byte, 0, 32+32+32+32)
	input = append(input, o[:]...)
	input = append(input, v[:]...)
	input = append(input, cmxBytes[:]...)
	input = append(input, ephemeralKey[:]...)
	return noteenc.OutgoingCipherKey(deriveScalar(input, hkdfInfoOCK))
}

func (Domain) OutgoingPlaintextBytes(note any, esk any) noteenc.OutPlaintextBytes {
	n := note.(*Note)
	e := esk.(ESK)
	var out noteenc.OutPlaintextBytes
	copy(out[:32], n.PkD[:])
	copy(out[32:], e[:])
	return out
}

func (Domain) EPKBytes(epk any) noteenc.EphemeralKeyBytes {
	return noteenc.EphemeralKeyBytes(epk.(EPK))
}

// EPK parses ephemeralKey as an EPK. refdomain treats every 32-byte
// string as a valid encoding (X25519 has no canonical-encoding
// requirement the way an Edwards curve point does); this is a
// deliberate simplification documented as an open question.
func (Domain) EPK(ephemeralKey noteenc.EphemeralKeyBytes) (any, bool) {
	return EPK(ephemeralKey), true
}

func (Domain) Cmx(note any) any {
	n := note.(*Note)
	compact := encodeCompact(n)
	input := make([]byte, 0, 32+CompactSize)
	input = append(input, n.PkD[:]...)
	input = append(input, compact[:]...)
	h := sha3.Sum256(input)
	return h
}

func (Domain) ExtractedCommitmentBytes(cmx any) noteenc.ExtractedCommitmentBytes {
	return noteenc.ExtractedCommitmentBytes(cmx.([32]byte))
}

func (Domain) ParseNotePlaintextWithoutMemoIVK(ivk any, compact noteenc.NoteBytes) (note any, recipient any, ok bool) {
	raw := compact.AsBytes()
	if len(raw) != CompactSize {
		return nil, nil, false
	}
	k := ivk.(IVK)
	pkD, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		return nil, nil, false
	}
	n := decodeCompact(raw)
	copy(n.PkD[:], pkD)
	var recip Recipient
	copy(recip[:], pkD)
	return n, recip, true
}

func (Domain) ParseNotePlaintextWithoutMemoOVK(pkD any, compact noteenc.NoteBytes) (note any, recipient any, ok bool) {
	raw := compact.AsBytes()
	if len(raw) != CompactSize {
		return nil, nil, false
	}
	p := pkD.([32]byte)
	n := decodeCompact(raw)
	n.PkD = p
	return n, Recipient(p), true
}

func (Domain) SplitPlaintextAtMemo(plaintext noteenc.NoteBytes) (compact noteenc.NoteBytes, memo any, ok bool) {
	raw := plaintext.AsBytes()
	if len(raw) != PlaintextSize {
		return nil, nil, false
	}
	c, ok := noteenc.NewBytesFromSlice(CompactSize, raw[:CompactSize])
	if !ok {
		return nil, nil, false
	}
	var m Memo
	copy(m[:], raw[CompactSize:])
	return c, m, true
}

func (Domain) ExtractPkD(out noteenc.OutPlaintextBytes) (any, bool) {
	var pkD [32]byte
	copy(pkD[:], out[:32])
	return pkD, true
}

func (Domain) ExtractESK(out noteenc.OutPlaintextBytes) (any, bool) {
	var esk ESK
	copy(esk[:], out[32:])
	return esk, true
}

func (Domain) ParseNotePlaintextBytes(plaintext []byte) (noteenc.NoteBytes, bool) {
	return noteenc.NewBytesFromSlice(PlaintextSize, plaintext)
}

func (Domain) ParseNoteCiphertextBytes(output []byte, tag [noteenc.AEADTagSize]byte) (noteenc.NoteBytes, bool) {
	return noteenc.NewBytesFromSliceWithTag(CiphertextSize, output, tag[:])
}

func (Domain) ParseCompactNotePlaintextBytes(plaintext []byte) (noteenc.NoteBytes, bool) {
	return noteenc.NewBytesFromSlice(CompactSize, plaintext)
}

// CheapCheck rejects outputs whose compact ciphertext is not exactly
// CompactSize bytes. TryNoteDecryption and TryCompactNoteDecryption call
// it before any X25519 or AEAD work; BatchTryCompactNoteDecryption calls
// it after key agreement and before any cipher work.
func (Domain) CheapCheck(output noteenc.ShieldedOutput) bool {
	return len(output.EncCiphertextCompact().AsBytes()) == CompactSize
}

var _ noteenc.Domain = Domain{}
var _ noteenc.BatchDomain = Domain{}

// BatchKDF runs KDF over every item with a non-nil Secret. refdomain has
// no amortized batch algorithm available — that would require a curve
// implementation with batched field inversion, which this minimal
// X25519 stand-in does not have — so this simply loops; it exists to
// exercise the BatchDomain interface end to end rather than to
// demonstrate a performance win.
func (d Domain) BatchKDF(items []noteenc.KDFBatchItem) []noteenc.SymmetricKeyBytes {
	out := make([]noteenc.SymmetricKeyBytes, len(items))
	for i, item := range items {
		if item.Secret == nil {
			continue
		}
		out[i] = d.KDF(item.Secret, item.EphemeralKey)
	}
	return out
}

// BatchEPK runs EPK/PrepareEPK over every ephemeral key.
func (d Domain) BatchEPK(ephemeralKeys []noteenc.EphemeralKeyBytes) []noteenc.EPKBatchResult {
	out := make([]noteenc.EPKBatchResult, len(ephemeralKeys))
	for i, ek := range ephemeralKeys {
		res := noteenc.EPKBatchResult{EphemeralKey: ek}
		if epk, ok := d.EPK(ek); ok {
			res.PreparedEPK = d.PrepareEPK(epk)
		}
		out[i] = res
	}
	return out
}
