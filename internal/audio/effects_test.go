package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEffectBankToleratesMissingAssets(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "squawk.wav", []byte("squawk-bytes"))
	// screeech.wav deliberately absent.

	bank := LoadEffectBank(dir)

	if _, ok := bank.Lookup(EffectSquawk); !ok {
		t.Fatalf("squawk effect missing after load")
	}
	if _, ok := bank.Lookup(EffectScreech); ok {
		t.Fatalf("screech effect present despite missing file")
	}
}

func TestLoadEffectBankPicksUpAmbientAssets(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "squawk.wav", []byte("squawk-bytes"))
	writeAsset(t, dir, "jungle.wav", []byte("jungle-loop"))
	writeAsset(t, dir, "notes.txt", []byte("not audio"))

	bank := LoadEffectBank(dir)

	data, ok := bank.Lookup("jungle")
	if !ok {
		t.Fatalf("ambient asset jungle not loaded")
	}
	if string(data) != "jungle-loop" {
		t.Fatalf("jungle asset bytes = %q, want %q", data, "jungle-loop")
	}
	if _, ok := bank.Lookup("notes"); ok {
		t.Fatalf("non-audio file loaded as asset")
	}
}

func TestEncodeWAVPCM16LEHeader(t *testing.T) {
	pcm := make([]byte, 32)
	wav, err := EncodeWAVPCM16LE(pcm, 22050)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("wav header markers wrong: %q %q", wav[:4], wav[8:12])
	}
}

func writeAsset(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write asset %s: %v", name, err)
	}
}
