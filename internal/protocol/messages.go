package protocol

// MessageType identifies websocket payload variants on the playback events
// feed.
type MessageType string

const (
	TypePlaybackStarted  MessageType = "playback_started"
	TypePlaybackFinished MessageType = "playback_finished"
	TypeQueueFlushed     MessageType = "queue_flushed"
)

// PlaybackEvent is pushed to websocket subscribers whenever the playback
// worker changes state. The audio visualizer front-end animates off these.
type PlaybackEvent struct {
	Type  MessageType `json:"type"`
	Kind  string      `json:"kind,omitempty"`
	Label string      `json:"label,omitempty"`
	Error string      `json:"error,omitempty"`
	TSMs  int64       `json:"ts_ms"`
}
