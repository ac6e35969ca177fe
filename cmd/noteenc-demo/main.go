// Command noteenc-demo exercises the note encryption core end to end:
// it builds a recipient and an encryptor, seals a note, then recovers it
// through all three decryption entrypoints (ivk, compact, ovk).
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/shielded/noteenc/pkg/log"
	"github.com/shielded/noteenc/pkg/metric"
	"github.com/shielded/noteenc/pkg/noteenc"
	"github.com/shielded/noteenc/pkg/noteenc/refdomain"
)

var Version = "dev"

func main() {
	logger := log.NewLogger("noteenc-demo")
	defer logger.Sync()

	metrics, err := metric.NewMetrics()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init metrics:", err)
		os.Exit(1)
	}

	domain := refdomain.New()
	engine := noteenc.NewEngine(domain, noteenc.EngineOptions{Logger: logger, Metrics: metrics})

	ivk, pkD, err := refdomain.GenerateKeypair()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate recipient keypair:", err)
		os.Exit(1)
	}
	ovk, err := refdomain.GenerateOVK()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate ovk:", err)
		os.Exit(1)
	}

	var rseed [32]byte
	if _, err := rand.Read(rseed[:]); err != nil {
		fmt.Fprintln(os.Stderr, "failed to sample rseed:", err)
		os.Exit(1)
	}
	note := &refdomain.Note{PkD: pkD, Value: 42_000_000, Rseed: &rseed}

	var memo refdomain.Memo
	copy(memo[:], []byte(fmt.Sprintf("noteenc-demo %s: hello, shielded pool", Version)))

	ne, ct := engine.EncryptNote(ovk, true, note, memo)

	cmx := domain.Cmx(note).([32]byte)
	epkBytes := domain.EPKBytes(ne.EPK())
	output := refdomain.NewOutput(epkBytes, cmx, ct)

	var cv refdomain.ValueCommitment
	if _, err := rand.Read(cv[:]); err != nil {
		fmt.Fprintln(os.Stderr, "failed to sample value commitment:", err)
		os.Exit(1)
	}
	outCiphertext := engine.EncryptOutgoing(ne, cv, cmx, rand.Reader)

	logger.Info("note encrypted", log.String("account", refdomain.NewAccountID()))

	if n, recipient, memoOut, ok := engine.TryNoteDecryption(ivk, output); ok {
		recoveredNote := n.(*refdomain.Note)
		fmt.Printf("ivk decryption ok: recipient=%x value=%d memo=%q\n",
			recipient, recoveredNote.Value, trimMemo(memoOut.(refdomain.Memo)))
	} else {
		fmt.Println("ivk decryption failed")
	}

	if n, recipient, ok := engine.TryCompactNoteDecryption(ivk, output); ok {
		recoveredNote := n.(*refdomain.Note)
		fmt.Printf("compact decryption ok: recipient=%x value=%d\n", recipient, recoveredNote.Value)
	} else {
		fmt.Println("compact decryption failed")
	}

	if n, recipient, memoOut, ok := engine.TryOutputRecoveryWithOvk(ovk, output, cv, outCiphertext); ok {
		recoveredNote := n.(*refdomain.Note)
		fmt.Printf("ovk recovery ok: recipient=%x value=%d memo=%q\n",
			recipient, recoveredNote.Value, trimMemo(memoOut.(refdomain.Memo)))
	} else {
		fmt.Println("ovk recovery failed")
	}
}

func trimMemo(m refdomain.Memo) string {
	end := len(m)
	for end > 0 && m[end-1] == 0 {
		end--
	}
	return string(m[:end])
}
