// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gesture-sensor/internal/logic"
)

// Topic is the MQTT topic for recognized gestures.
const Topic = "sensor/gestures/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "sensor/gestures/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a gesture event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// many messages are waiting for it.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Gesture GesturePayload `json:"gesture"`
}

// GesturePayload contains the gesture event details.
type GesturePayload struct {
	Timestamp   string `json:"timestamp"`
	Event       string `json:"event"`
	Description string `json:"description"`
	Orientation string `json:"orientation"`
	Ticks       uint32 `json:"ticks"`
}

// FormatPayload creates the JSON payload for a gesture event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Gesture: GesturePayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       event.Gesture.Code(),
			Description: event.Gesture.String(),
			Orientation: event.Orientation.Code(),
			Ticks:       uint32(event.Ticks),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
