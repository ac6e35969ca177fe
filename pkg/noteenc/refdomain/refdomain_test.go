package refdomain_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shielded/noteenc/pkg/noteenc"
	"github.com/shielded/noteenc/pkg/noteenc/refdomain"
)

func newTestNote(t *testing.T, pkD [32]byte, value uint64) *refdomain.Note {
	t.Helper()
	var rseed [32]byte
	_, err := rand.Read(rseed[:])
	require.NoError(t, err)
	return &refdomain.Note{PkD: pkD, Value: value, Rseed: &rseed}
}

func buildOutput(t *testing.T, domain refdomain.Domain, note *refdomain.Note, memo refdomain.Memo, ovk refdomain.OVK, hasOVK bool) (*refdomain.Output, *noteenc.NoteEncryption, [32]byte) {
	t.Helper()
	ne := noteenc.NewNoteEncryption(domain, ovk, hasOVK, note, memo)
	ct := ne.EncryptNotePlaintext()
	cmx := domain.Cmx(note).([32]byte)
	epkBytes := domain.EPKBytes(ne.EPK())
	return refdomain.NewOutput(epkBytes, cmx, ct), ne, cmx
}

func TestRoundTripIVK(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 7_000)
	var memo refdomain.Memo
	copy(memo[:], []byte("for services rendered, account "+refdomain.NewAccountID()))

	output, _, _ := buildOutput(t, domain, note, memo, ovk, true)

	gotNote, _, gotMemo, ok := noteenc.TryNoteDecryption(domain, ivk, output)
	require.True(ok)
	require.Equal(note.Value, gotNote.(*refdomain.Note).Value)
	require.Equal(memo, gotMemo.(refdomain.Memo))
}

func TestRoundTripCompact(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 1_500)
	var memo refdomain.Memo

	output, _, _ := buildOutput(t, domain, note, memo, ovk, true)

	gotNote, _, ok := noteenc.TryCompactNoteDecryption(domain, ivk, output)
	require.True(ok)
	require.Equal(note.Value, gotNote.(*refdomain.Note).Value)
}

func TestOvkRecoveryMatchesRecipientView(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 250_000)
	var memo refdomain.Memo
	copy(memo[:], []byte("invoice #42"))

	output, ne, cmx := buildOutput(t, domain, note, memo, ovk, true)

	var cv refdomain.ValueCommitment
	_, err = rand.Read(cv[:])
	require.NoError(err)
	outCT := ne.EncryptOutgoingPlaintext(cv, cmx, rand.Reader)

	ivkNote, ivkRecipient, ivkMemo, ok := noteenc.TryNoteDecryption(domain, ivk, output)
	require.True(ok)

	ovkNote, ovkRecipient, ovkMemo, ok := noteenc.TryOutputRecoveryWithOvk(domain, ovk, output, cv, outCT)
	require.True(ok)

	require.Equal(ivkNote.(*refdomain.Note).Value, ovkNote.(*refdomain.Note).Value)
	require.Equal(ivkRecipient, ovkRecipient)
	require.Equal(ivkMemo, ovkMemo)
}

func TestOvkAbsentStillProducesOutCiphertext(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	_, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)

	note := newTestNote(t, pkD, 10)
	var memo refdomain.Memo

	ne := noteenc.NewNoteEncryption(domain, nil, false, note, memo)
	cmx := domain.Cmx(note).([32]byte)
	var cv refdomain.ValueCommitment
	_, err = rand.Read(cv[:])
	require.NoError(err)

	outCT := ne.EncryptOutgoingPlaintext(cv, cmx, rand.Reader)
	require.Len(outCT, noteenc.OutCiphertextSize)

	// Without the real ovk, trial ock derivations must fail closed rather
	// than panicking or silently succeeding.
	wrongOVK, err := refdomain.GenerateOVK()
	require.NoError(err)
	epkBytes := domain.EPKBytes(ne.EPK())
	output := refdomain.NewOutput(epkBytes, cmx, ne.EncryptNotePlaintext())
	_, _, _, ok := noteenc.TryOutputRecoveryWithOvk(domain, wrongOVK, output, cv, outCT)
	require.False(ok)
}

func TestTamperedCiphertextFailsClosed(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 99)
	var memo refdomain.Memo

	output, _, _ := buildOutput(t, domain, note, memo, ovk, true)

	full, _ := output.EncCiphertext()
	tampered := append([]byte{}, full.AsBytes()...)
	tampered[0] ^= 0xff
	tamperedBytes, ok := noteenc.NewBytesFromSlice(len(tampered), tampered)
	require.True(ok)
	tamperedOutput := refdomain.NewOutput(output.EphemeralKey(), domain.Cmx(note).([32]byte), tamperedBytes)

	_, _, _, ok = noteenc.TryNoteDecryption(domain, ivk, tamperedOutput)
	require.False(ok)
}

func TestWrongIVKFailsClosed(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	_, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	wrongIVK, _, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 5)
	var memo refdomain.Memo

	output, _, _ := buildOutput(t, domain, note, memo, ovk, true)

	_, _, _, ok := noteenc.TryNoteDecryption(domain, wrongIVK, output)
	require.False(ok)
}

func TestCommitmentMismatchFailsClosed(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 3)
	var memo refdomain.Memo

	output, ne, _ := buildOutput(t, domain, note, memo, ovk, true)
	var wrongCmx [32]byte
	_, err = rand.Read(wrongCmx[:])
	require.NoError(err)
	wrongOutput := refdomain.NewOutput(output.EphemeralKey(), wrongCmx, ne.EncryptNotePlaintext())

	_, _, _, ok := noteenc.TryNoteDecryption(domain, ivk, wrongOutput)
	require.False(ok)
}

func TestBatchMatchesPerOutputDecryption(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	const numRecipients = 3
	const numOutputs = 4

	type recipient struct {
		ivk refdomain.IVK
		pkD [32]byte
	}
	recipients := make([]recipient, numRecipients)
	ivks := make([]any, numRecipients)
	for i := range recipients {
		ivk, pkD, err := refdomain.GenerateKeypair()
		require.NoError(err)
		recipients[i] = recipient{ivk: ivk, pkD: pkD}
		ivks[i] = ivk
	}

	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	outputs := make([]noteenc.ShieldedOutput, numOutputs)
	targetRecipient := 1
	for i := 0; i < numOutputs; i++ {
		note := newTestNote(t, recipients[targetRecipient].pkD, uint64(1000+i))
		var memo refdomain.Memo
		output, _, _ := buildOutput(t, domain, note, memo, ovk, true)
		outputs[i] = output
	}

	results := noteenc.BatchTryCompactNoteDecryption(domain, ivks, outputs)
	require.Len(results, numOutputs)

	for i, out := range outputs {
		gotNote, _, ok := noteenc.TryCompactNoteDecryption(domain, recipients[targetRecipient].ivk, out)
		require.True(ok)

		var found bool
		for _, r := range results {
			if r.OutputIndex == i {
				found = true
				require.Equal(gotNote.(*refdomain.Note).Value, r.Note.(*refdomain.Note).Value)
			}
		}
		require.True(found)
	}
}

func TestDeterministicESKMatchesRecomputedEPK(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	_, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	note := newTestNote(t, pkD, 1)

	esk1, ok := domain.DeriveESK(note)
	require.True(ok)
	esk2, ok := domain.DeriveESK(note)
	require.True(ok)
	require.Equal(esk1, esk2)

	epk1 := domain.KADerivePublic(note, esk1)
	epk2 := domain.KADerivePublic(note, esk2)
	require.Equal(epk1, epk2)
}

func TestPreZip212NoteHasNoDeterministicESK(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	_, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	note := &refdomain.Note{PkD: pkD, Value: 1, Rseed: nil}

	_, ok := domain.DeriveESK(note)
	require.False(ok)
}

// buildOutputWithESK is buildOutput's counterpart for the test-only
// NewNoteEncryptionWithESK constructor, used to exercise notes encrypted
// under an esk the domain did not itself derive (a mismatched esk for a
// ZIP-212-active note, or any esk for a pre-ZIP-212 note).
func buildOutputWithESK(t *testing.T, domain refdomain.Domain, esk refdomain.ESK, note *refdomain.Note, memo refdomain.Memo, ovk refdomain.OVK, hasOVK bool) (*refdomain.Output, *noteenc.NoteEncryption, [32]byte) {
	t.Helper()
	ne := noteenc.NewNoteEncryptionWithESK(domain, esk, ovk, hasOVK, note, memo)
	ct := ne.EncryptNotePlaintext()
	cmx := domain.Cmx(note).([32]byte)
	epkBytes := domain.EPKBytes(ne.EPK())
	return refdomain.NewOutput(epkBytes, cmx, ct), ne, cmx
}

func randomESK(t *testing.T) refdomain.ESK {
	t.Helper()
	var esk refdomain.ESK
	_, err := rand.Read(esk[:])
	require.NoError(t, err)
	return esk
}

// TestZip212ESKMismatchFailsClosed exercises spec.md §8 testable property
// 8: encrypting a ZIP-212-active note (non-nil Rseed) under an esk that
// does not equal domain.DeriveESK(note) must be rejected by both the
// ivk-path and the ovk-path validity check, even though the AEAD itself
// authenticates cleanly (the esk used for encryption is internally
// consistent with the epk it produced; it is simply not the esk the
// note's own rseed deterministically commits to).
func TestZip212ESKMismatchFailsClosed(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := newTestNote(t, pkD, 123)
	var memo refdomain.Memo
	copy(memo[:], []byte("zip-212 mismatch fixture"))

	wrongESK := randomESK(t)
	derivedESK, ok := domain.DeriveESK(note)
	require.True(ok)
	require.NotEqual(derivedESK, wrongESK)

	output, ne, cmx := buildOutputWithESK(t, domain, wrongESK, note, memo, ovk, true)

	_, _, _, ok = noteenc.TryNoteDecryption(domain, ivk, output)
	require.False(ok)

	var cv refdomain.ValueCommitment
	_, err = rand.Read(cv[:])
	require.NoError(err)
	outCT := ne.EncryptOutgoingPlaintext(cv, cmx, rand.Reader)

	_, _, _, ok = noteenc.TryOutputRecoveryWithOvk(domain, ovk, output, cv, outCT)
	require.False(ok)
}

// TestPreZip212RoundTrip exercises the accept branch of checkNoteValidity
// (decrypt.go's pre-ZIP-212 "no deterministic esk to check against" path)
// end to end: a note with Rseed == nil has no derivable esk, so both the
// ivk-path and the ovk-path must still succeed using only the esk the
// test supplies explicitly via NewNoteEncryptionWithESK.
func TestPreZip212RoundTrip(t *testing.T) {
	require := require.New(t)
	domain := refdomain.New()

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	note := &refdomain.Note{PkD: pkD, Value: 555, Rseed: nil}
	var memo refdomain.Memo
	copy(memo[:], []byte("pre-zip-212 fixture"))

	esk := randomESK(t)
	_, ok := domain.DeriveESK(note)
	require.False(ok)

	output, ne, cmx := buildOutputWithESK(t, domain, esk, note, memo, ovk, true)

	gotNote, _, gotMemo, ok := noteenc.TryNoteDecryption(domain, ivk, output)
	require.True(ok)
	require.Equal(note.Value, gotNote.(*refdomain.Note).Value)
	require.Equal(memo, gotMemo.(refdomain.Memo))
	require.Nil(gotNote.(*refdomain.Note).Rseed)

	var cv refdomain.ValueCommitment
	_, err = rand.Read(cv[:])
	require.NoError(err)
	outCT := ne.EncryptOutgoingPlaintext(cv, cmx, rand.Reader)

	ovkNote, _, ovkMemo, ok := noteenc.TryOutputRecoveryWithOvk(domain, ovk, output, cv, outCT)
	require.True(ok)
	require.Equal(note.Value, ovkNote.(*refdomain.Note).Value)
	require.Equal(memo, ovkMemo.(refdomain.Memo))
}
