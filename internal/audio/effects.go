package audio

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// Well-known effect names. The asset filenames mirror the recordings that
// ship with the parrot (note the triple-e in screeech.wav).
const (
	EffectSquawk  = "squawk"
	EffectScreech = "screech"
	EffectApology = "apology"
)

var effectFiles = map[string]string{
	EffectSquawk:  "squawk.wav",
	EffectScreech: "screeech.wav",
	EffectApology: "apology.mp3",
}

// EffectBank holds preloaded short sounds (parrot effects plus any ambient
// loops dropped into the assets directory). Assets are read once at startup;
// a missing file is a warning, not an error, and the effect is simply absent.
type EffectBank struct {
	sounds map[string][]byte
}

// LoadEffectBank scans dir for the known effect files and any extra .wav or
// .mp3 assets (keyed by base name without extension, e.g. "jungle" for an
// ambient jungle.wav).
func LoadEffectBank(dir string) *EffectBank {
	bank := &EffectBank{sounds: make(map[string][]byte)}

	for name, file := range effectFiles {
		data, err := readAsset(filepath.Join(dir, file))
		if err != nil {
			log.Printf("effect %q unavailable: %v", name, err)
			continue
		}
		bank.sounds[name] = data
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("assets dir %q unreadable: %v", dir, err)
		return bank
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".wav" && ext != ".mp3" {
			continue
		}
		name := entry.Name()[:len(entry.Name())-len(ext)]
		if _, ok := bank.sounds[name]; ok {
			continue
		}
		data, err := readAsset(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("asset %q unreadable: %v", entry.Name(), err)
			continue
		}
		bank.sounds[name] = data
	}
	return bank
}

// Lookup returns the preloaded audio for name.
func (b *EffectBank) Lookup(name string) ([]byte, bool) {
	data, ok := b.sounds[name]
	return data, ok
}

// Names lists the loaded assets in stable order.
func (b *EffectBank) Names() []string {
	names := make([]string, 0, len(b.sounds))
	for name := range b.sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func readAsset(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("asset %s is empty", path)
	}
	return data, nil
}
