// Package status keeps a thread-safe view of the gesture sensor for the HTTP
// status page and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gesture-sensor/internal/logic"
)

// NetworkInfo contains network state as reported by the host helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	WSBroker    string // browser MQTT websocket URL, empty when disabled
	I2CBus      string
	I2CAddr     uint16
}

// Inputs is the debounced state of the physical controls.
type Inputs struct {
	LeftPressed  bool
	RightPressed bool
	SwitchOn     bool
	Orientation  logic.Orientation
	BusErrors    uint64
}

// Snapshot is a point-in-time copy of daemon state.
type Snapshot struct {
	Inputs        Inputs
	Last          logic.Event
	Counts        logic.GestureCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. The poll loop
// writes, HTTP handlers read.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the current inputs and gesture tally.
func (t *Tracker) Update(in Inputs, last logic.Event, counts logic.GestureCounts) {
	t.mu.Lock()
	t.snap.Inputs = in
	t.snap.Last = last
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered sets the number of messages waiting for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a copy of the daemon state with Now set to the
// current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
