package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/gesture-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Inputs        InputsJSON     `json:"inputs"`
	LastGesture   *GestureJSON   `json:"last_gesture,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        map[string]int `json:"gesture_counts"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// InputsJSON is the JSON representation of the debounced inputs.
type InputsJSON struct {
	Left        string `json:"left"`
	Right       string `json:"right"`
	Switch      string `json:"switch"`
	Orientation string `json:"orientation"`
	BusErrors   uint64 `json:"bus_errors"`
}

// GestureJSON describes the most recent gesture.
type GestureJSON struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Buffered  int    `json:"buffered"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	WSBroker    string `json:"ws_broker,omitempty"`
	I2CBus      string `json:"i2c_bus"`
	I2CAddr     string `json:"i2c_addr"`
}

func pressed(p bool) string {
	if p {
		return "PRESSED"
	}
	return "RELEASED"
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot, event, reason string) StatusInner {
	counts := make(map[string]int)
	for g, n := range snap.Counts {
		if n > 0 {
			counts[logic.Gesture(g).Code()] = n
		}
	}

	inner := StatusInner{
		Event:  event,
		Reason: reason,
		Inputs: InputsJSON{
			Left:        pressed(snap.Inputs.LeftPressed),
			Right:       pressed(snap.Inputs.RightPressed),
			Switch:      onOff(snap.Inputs.SwitchOn),
			Orientation: snap.Inputs.Orientation.Code(),
			BusErrors:   snap.Inputs.BusErrors,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{
			Connected: snap.MQTTConnected,
			Buffered:  snap.MQTTBuffered,
			Broker:    snap.Config.Broker,
		},
		Counts:        counts,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			WSBroker:    snap.Config.WSBroker,
			I2CBus:      snap.Config.I2CBus,
			I2CAddr:     fmt.Sprintf("%#02x", snap.Config.I2CAddr),
		},
	}

	if snap.Last.Gesture != logic.None {
		inner.LastGesture = &GestureJSON{
			Event:     snap.Last.Gesture.Code(),
			Timestamp: snap.Last.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap, "", "")}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	data, _ := json.Marshal(StatusJSON{Status: buildInner(snap, event, reason)})
	return data
}
