package refdomain

import "github.com/shielded/noteenc/pkg/noteenc"

// Output is a minimal noteenc.ShieldedOutput: the pieces a real
// transaction output would carry for this domain. It holds either a
// full note ciphertext (for a fully-validating node) or only the
// compact prefix (for a light-client block), matching the two shapes
// TryNoteDecryption and TryCompactNoteDecryption are built to accept.
type Output struct {
	ephemeralKey noteenc.EphemeralKeyBytes
	cmx          [32]byte
	full         noteenc.NoteBytes
	compact      noteenc.NoteBytes
}

var _ noteenc.ShieldedOutput = (*Output)(nil)

// NewOutput builds a full output from its ephemeral key, commitment,
// and the encCiphertext produced by noteenc.NoteEncryption. The compact
// prefix is derived from it, since the compact ciphertext is always the
// first CompactSize bytes of the full ciphertext's body.
func NewOutput(ephemeralKey noteenc.EphemeralKeyBytes, cmx [32]byte, full noteenc.NoteBytes) *Output {
	raw := full.AsBytes()
	if len(raw) < CompactSize {
		panic("refdomain: full ciphertext shorter than the compact prefix")
	}
	compact, ok := noteenc.NewBytesFromSlice(CompactSize, raw[:CompactSize])
	if !ok {
		panic("refdomain: failed to derive compact prefix from full ciphertext")
	}
	return &Output{ephemeralKey: ephemeralKey, cmx: cmx, full: full, compact: compact}
}

// NewCompactOutput builds a compact-only output, simulating what a
// light client receives: no full ciphertext, so EncCiphertext reports
// ok=false.
func NewCompactOutput(ephemeralKey noteenc.EphemeralKeyBytes, cmx [32]byte, compact noteenc.NoteBytes) *Output {
	return &Output{ephemeralKey: ephemeralKey, cmx: cmx, compact: compact}
}

func (o *Output) EphemeralKey() noteenc.EphemeralKeyBytes { return o.ephemeralKey }

func (o *Output) Cmx() any { return o.cmx }

func (o *Output) EncCiphertext() (noteenc.NoteBytes, bool) {
	if o.full == nil {
		return nil, false
	}
	return o.full, true
}

func (o *Output) EncCiphertextCompact() noteenc.NoteBytes { return o.compact }
