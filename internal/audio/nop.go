package audio

// NopDevice swallows all playback. Used when no player binary is available
// so the daemon still runs (speaks into the void) instead of refusing to
// start, matching how the parrot behaves with a broken mixer.
type NopDevice struct{}

func NewNopDevice() *NopDevice { return &NopDevice{} }

func (*NopDevice) LoadBytes([]byte) error { return nil }
func (*NopDevice) LoadFile(string) error  { return nil }
func (*NopDevice) Play() error            { return nil }
func (*NopDevice) IsBusy() bool           { return false }
func (*NopDevice) Stop()                  {}
