package audio

import (
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// Device is the physical audio output. Exactly one component (the playback
// worker) may call into it; implementations are not required to be
// goroutine-safe beyond IsBusy.
type Device interface {
	// LoadBytes stages an in-memory compressed audio buffer for playback.
	LoadBytes(data []byte) error
	// LoadFile stages a named asset from disk.
	LoadFile(path string) error
	// Play starts playback of the staged audio and returns immediately.
	Play() error
	// IsBusy reports whether the device is still playing.
	IsBusy() bool
	// Stop halts any in-flight playback.
	Stop()
}

// ExecDevice plays audio by piping the staged buffer to an external player
// process (mpg123, ffplay, ...). It stands in for a hardware mixer on the
// machines the parrot runs on.
type ExecDevice struct {
	command string
	args    []string

	mu      sync.Mutex
	staged  []byte
	current *exec.Cmd
	playing bool
}

func NewExecDevice(command string, args ...string) (*ExecDevice, error) {
	if command == "" {
		return nil, fmt.Errorf("player command is required")
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("player %q not found: %w", command, err)
	}
	if len(args) == 0 {
		args = defaultPlayerArgs(command)
	}
	return &ExecDevice{command: command, args: args}, nil
}

// defaultPlayerArgs returns stdin-reading flags for common players.
func defaultPlayerArgs(command string) []string {
	switch command {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-"}
	case "mpg123":
		return []string{"-q", "-"}
	case "aplay":
		return []string{"-q", "-"}
	default:
		return []string{"-"}
	}
}

func (d *ExecDevice) LoadBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty audio buffer")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.staged = data
	return nil
}

func (d *ExecDevice) LoadFile(path string) error {
	data, err := readAsset(path)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.staged = data
	return nil
}

func (d *ExecDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.staged) == 0 {
		return fmt.Errorf("no audio staged")
	}

	cmd := exec.Command(d.command, d.args...)
	cmd.Stdin = bytes.NewReader(d.staged)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	d.current = cmd
	d.playing = true

	go func() {
		err := cmd.Wait()
		d.mu.Lock()
		interrupted := d.current != cmd
		if !interrupted {
			d.playing = false
			d.current = nil
		}
		d.mu.Unlock()
		// Stop kills the process, so that exit is expected noise.
		if err != nil && !interrupted {
			log.Printf("player %s exited with error: %v", d.command, err)
		}
	}()
	return nil
}

func (d *ExecDevice) IsBusy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *ExecDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil && d.current.Process != nil {
		_ = d.current.Process.Kill()
	}
	d.playing = false
	d.current = nil
}
