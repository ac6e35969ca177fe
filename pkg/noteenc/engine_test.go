package noteenc_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shielded/noteenc/pkg/log"
	"github.com/shielded/noteenc/pkg/metric"
	"github.com/shielded/noteenc/pkg/noteenc"
	"github.com/shielded/noteenc/pkg/noteenc/refdomain"
)

func TestEngineRoundTrip(t *testing.T) {
	require := require.New(t)

	m, err := metric.NewMetrics()
	require.NoError(err)

	domain := refdomain.New()
	engine := noteenc.NewEngine(domain, noteenc.EngineOptions{Logger: log.NoLog, Metrics: m})

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	var rseed [32]byte
	_, err = rand.Read(rseed[:])
	require.NoError(err)
	note := &refdomain.Note{PkD: pkD, Value: 17, Rseed: &rseed}
	var memo refdomain.Memo

	ne, ct := engine.EncryptNote(ovk, true, note, memo)
	cmx := domain.Cmx(note).([32]byte)
	epkBytes := domain.EPKBytes(ne.EPK())
	output := refdomain.NewOutput(epkBytes, cmx, ct)

	var cv refdomain.ValueCommitment
	_, err = rand.Read(cv[:])
	require.NoError(err)
	outCT := engine.EncryptOutgoing(ne, cv, cmx, rand.Reader)

	gotNote, _, _, ok := engine.TryNoteDecryption(ivk, output)
	require.True(ok)
	require.Equal(note.Value, gotNote.(*refdomain.Note).Value)

	gotCompact, _, ok := engine.TryCompactNoteDecryption(ivk, output)
	require.True(ok)
	require.Equal(note.Value, gotCompact.(*refdomain.Note).Value)

	gotOvk, _, _, ok := engine.TryOutputRecoveryWithOvk(ovk, output, cv, outCT)
	require.True(ok)
	require.Equal(note.Value, gotOvk.(*refdomain.Note).Value)

	gather, err := m.Gatherer().Gather()
	require.NoError(err)
	require.NotEmpty(gather)
}

func TestEngineNilOptionsIsSafe(t *testing.T) {
	require := require.New(t)

	domain := refdomain.New()
	engine := noteenc.NewEngine(domain, noteenc.EngineOptions{})

	ivk, pkD, err := refdomain.GenerateKeypair()
	require.NoError(err)
	ovk, err := refdomain.GenerateOVK()
	require.NoError(err)

	var rseed [32]byte
	_, err = rand.Read(rseed[:])
	require.NoError(err)
	note := &refdomain.Note{PkD: pkD, Value: 1, Rseed: &rseed}
	var memo refdomain.Memo

	ne, ct := engine.EncryptNote(ovk, true, note, memo)
	cmx := domain.Cmx(note).([32]byte)
	epkBytes := domain.EPKBytes(ne.EPK())
	output := refdomain.NewOutput(epkBytes, cmx, ct)

	_, _, _, ok := engine.TryNoteDecryption(ivk, output)
	require.True(ok)
}
