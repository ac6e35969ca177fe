package noteenc

import (
	"io"

	"github.com/shielded/noteenc/pkg/log"
	"github.com/shielded/noteenc/pkg/metric"
)

// EngineOptions configures the optional observability a caller may want
// around the pure Try*/NoteEncryption functions. Both fields are
// nil-safe: an Engine built with a zero EngineOptions behaves exactly
// like calling the package-level functions directly.
type EngineOptions struct {
	Logger  log.Logger
	Metrics *metric.Metrics
}

// Engine wraps a Domain with optional logging and metrics around each
// decryption entrypoint. It exists purely for observability; it adds no
// behavior the package-level Try* functions do not already have, and it
// never logs or counts anything beyond which entrypoint ran and whether
// it succeeded — no key material, shared secrets, or plaintext ever
// reaches the logger or the metrics recorder.
type Engine struct {
	domain Domain
	log    log.Logger
	m      *metric.Metrics
}

// NewEngine builds an Engine over domain. A nil/zero opts.Logger becomes
// log.NoLog; a nil opts.Metrics disables metrics recording.
func NewEngine(domain Domain, opts EngineOptions) *Engine {
	l := opts.Logger
	if l == nil {
		l = log.NoLog
	}
	return &Engine{domain: domain, log: l, m: opts.Metrics}
}

func (e *Engine) record(entrypoint string, ok bool) {
	e.m.RecordDecryptAttempt(entrypoint, ok)
	if ok {
		e.log.Debug("note decryption succeeded", log.String("entrypoint", entrypoint))
	} else {
		e.log.Debug("note decryption failed", log.String("entrypoint", entrypoint))
	}
}

// TryNoteDecryption is TryNoteDecryption, instrumented.
func (e *Engine) TryNoteDecryption(ivk any, output ShieldedOutput) (note, recipient, memo any, ok bool) {
	note, recipient, memo, ok = TryNoteDecryption(e.domain, ivk, output)
	e.record("try_note_decryption", ok)
	return
}

// TryCompactNoteDecryption is TryCompactNoteDecryption, instrumented.
func (e *Engine) TryCompactNoteDecryption(ivk any, output ShieldedOutput) (note, recipient any, ok bool) {
	note, recipient, ok = TryCompactNoteDecryption(e.domain, ivk, output)
	e.record("try_compact_note_decryption", ok)
	return
}

// TryOutputRecoveryWithOvk is TryOutputRecoveryWithOvk, instrumented.
func (e *Engine) TryOutputRecoveryWithOvk(ovk any, output ShieldedOutput, cv any, outCiphertext OutCiphertextBytes) (note, recipient, memo any, ok bool) {
	note, recipient, memo, ok = TryOutputRecoveryWithOvk(e.domain, ovk, output, cv, outCiphertext)
	e.record("try_output_recovery_with_ovk", ok)
	return
}

// EncryptNote builds a NoteEncryption context and produces encCiphertext
// for note/memo, recording that an encryption happened.
func (e *Engine) EncryptNote(ovk any, hasOVK bool, note, memo any) (*NoteEncryption, NoteBytes) {
	ne := NewNoteEncryption(e.domain, ovk, hasOVK, note, memo)
	ct := ne.EncryptNotePlaintext()
	if e.m != nil {
		e.m.EncryptNoteTotal.Inc()
	}
	return ne, ct
}

// EncryptOutgoing produces outCiphertext for an existing encryption
// context, recording that an outgoing encryption happened.
func (e *Engine) EncryptOutgoing(ne *NoteEncryption, cv, cmx any, rng io.Reader) OutCiphertextBytes {
	out := ne.EncryptOutgoingPlaintext(cv, cmx, rng)
	if e.m != nil {
		e.m.EncryptOutgoingTotal.Inc()
	}
	return out
}
