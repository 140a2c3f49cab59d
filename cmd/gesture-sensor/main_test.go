package main

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/gesture-sensor/internal/accel"
	"github.com/sweeney/gesture-sensor/internal/gpio"
	"github.com/sweeney/gesture-sensor/internal/logic"
	"github.com/sweeney/gesture-sensor/internal/mqtt"
	"github.com/sweeney/gesture-sensor/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	got := readNetworkInfo()
	want := &status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestResolveWSBroker(t *testing.T) {
	tests := []struct {
		ws, broker, want string
	}{
		{"=broker", "tcp://192.168.1.200:1883", "ws://192.168.1.200:9001"},
		{"=broker", "tcp://mqtt.local:1883", "ws://mqtt.local:9001"},
		{"off", "tcp://192.168.1.200:1883", ""},
		{"wss://example.com/mqtt", "tcp://192.168.1.200:1883", "wss://example.com/mqtt"},
		{"", "tcp://192.168.1.200:1883", ""},
	}
	for _, tt := range tests {
		if got := resolveWSBroker(tt.ws, tt.broker); got != tt.want {
			t.Errorf("resolveWSBroker(%q, %q): got %q, want %q", tt.ws, tt.broker, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if levelString(true) != "HIGH" || levelString(false) != "LOW" {
		t.Error("unexpected level strings")
	}
}

// --- runLoop tests ---

// script is a fake clock. Call n returns start + n*step after running the
// action registered for n, if any. Call 0 is runLoop's start time and call k
// is the k-th tick, so actions run on the loop goroutine just before the
// arbiter polls.
type script struct {
	start   time.Time
	step    time.Duration
	actions map[int]func()
	calls   int
}

func newScript(step time.Duration) *script {
	return &script{
		start:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		step:    step,
		actions: make(map[int]func()),
	}
}

func (s *script) at(call int, action func()) {
	s.actions[call] = action
}

func (s *script) now() time.Time {
	if a := s.actions[s.calls]; a != nil {
		a()
	}
	t := s.start.Add(time.Duration(s.calls) * s.step)
	s.calls++
	return t
}

type rig struct {
	sensor  *accel.FakeSensor
	watcher *gpio.FakeWatcher
	arb     *logic.Arbiter
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
}

func newRig() *rig {
	sensor := accel.NewFakeSensor(nil)
	arb := logic.NewArbiter(sensor, logic.DefaultPolarity)
	watcher := gpio.NewFakeWatcher(gpio.Handlers{
		Left:      arb.Left.Set,
		Right:     arb.Right.Set,
		Switch:    arb.Slide.Set,
		Interrupt: arb.AccelInterrupt,
	})
	return &rig{
		sensor:  sensor,
		watcher: watcher,
		arb:     arb,
		pub:     mqtt.NewFakePublisher(),
		tracker: status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{}),
	}
}

// run drives runLoop for nTicks ticks and then delivers signal.
func (r *rig) run(t *testing.T, clock *script, heartbeat time.Duration, nTicks int, signal os.Signal) {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(r.arb, r.pub, r.pub, r.tracker, heartbeat, clock.now, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
}

func TestRunLoopIdlePublishesOnlyShutdown(t *testing.T) {
	r := newRig()
	r.run(t, newScript(10*time.Millisecond), 0, 50, syscall.SIGTERM)

	if len(r.pub.Events) != 0 {
		t.Errorf("expected no gestures, got %v", r.pub.Gestures())
	}
	if got := r.pub.SystemEventNames(); !reflect.DeepEqual(got, []string{"SHUTDOWN"}) {
		t.Errorf("system events: got %v, want [SHUTDOWN]", got)
	}
	if r.pub.SystemEvents[0].Reason != "SIGTERM" || !r.pub.SystemEvents[0].Retained {
		t.Errorf("shutdown event: got %+v", r.pub.SystemEvents[0])
	}
}

func TestRunLoopLeftClick(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(2, func() { r.watcher.SetLeft(true) })
	clock.at(10, func() { r.watcher.SetLeft(false) })

	r.run(t, clock, 0, 20, syscall.SIGTERM)

	if got := r.pub.Gestures(); !reflect.DeepEqual(got, []logic.Gesture{logic.LeftClicked}) {
		t.Fatalf("gestures: got %v, want [left button clicked]", got)
	}
	// Release edge at 100ms commits after the debounce window
	if r.pub.Events[0].Ticks != 130 {
		t.Errorf("ticks: got %d, want 130", r.pub.Events[0].Ticks)
	}
	if !r.pub.Events[0].Timestamp.Equal(clock.start.Add(130 * time.Millisecond)) {
		t.Errorf("timestamp: got %v", r.pub.Events[0].Timestamp)
	}

	snap := r.tracker.Snapshot()
	if snap.Last.Gesture != logic.LeftClicked || snap.Counts.Of(logic.LeftClicked) != 1 {
		t.Errorf("tracker: last=%v counts=%d", snap.Last.Gesture, snap.Counts.Of(logic.LeftClicked))
	}
}

func TestRunLoopLongPressAndRelease(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(1, func() { r.watcher.SetRight(true) })
	clock.at(50, func() { r.watcher.SetRight(false) })

	r.run(t, clock, 0, 60, syscall.SIGTERM)

	want := []logic.Gesture{logic.RightPressed, logic.RightReleased}
	if got := r.pub.Gestures(); !reflect.DeepEqual(got, want) {
		t.Errorf("gestures: got %v, want %v", got, want)
	}
}

func TestRunLoopSlideSwitch(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(3, func() { r.watcher.SetSwitch(true) })

	r.run(t, clock, 0, 10, syscall.SIGTERM)

	if got := r.pub.Gestures(); !reflect.DeepEqual(got, []logic.Gesture{logic.SlideSwitchedOn}) {
		t.Errorf("gestures: got %v, want [slide switch turned on]", got)
	}
	if !r.tracker.Snapshot().Inputs.SwitchOn {
		t.Error("tracker should report the switch on")
	}
}

func TestRunLoopDoubleTapWithOrientation(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(5, func() {
		r.sensor.MotionSrc = 0x20 // Z up
		r.watcher.Interrupt()
	})
	clock.at(30, func() {
		r.sensor.ClickSrc = 0x60
		r.watcher.Interrupt()
	})

	r.run(t, clock, 0, 35, syscall.SIGTERM)

	want := []logic.Gesture{logic.OrientationChanged, logic.DoubleTapped}
	if got := r.pub.Gestures(); !reflect.DeepEqual(got, want) {
		t.Fatalf("gestures: got %v, want %v", got, want)
	}
	for i, e := range r.pub.Events {
		if e.Orientation != logic.ZUp {
			t.Errorf("event %d: orientation %v, want Z UP", i, e.Orientation)
		}
	}
	if r.watcher.Interrupts != 2 {
		t.Errorf("interrupts: got %d, want 2", r.watcher.Interrupts)
	}
}

func TestRunLoopEarlyTapIsSuppressed(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(5, func() {
		r.sensor.ClickSrc = 0x60
		r.watcher.Interrupt()
	})

	r.run(t, clock, 0, 10, syscall.SIGTERM)

	if len(r.pub.Events) != 0 {
		t.Errorf("tap within the ignore window after startup should be dropped, got %v", r.pub.Gestures())
	}
}

func TestRunLoopBusErrorsDoNotStopLoop(t *testing.T) {
	r := newRig()
	r.sensor.ReadError = errors.New("i2c nack")
	clock := newScript(10 * time.Millisecond)
	clock.at(2, func() { r.watcher.SetLeft(true) })
	clock.at(10, func() { r.watcher.SetLeft(false) })

	r.run(t, clock, 0, 20, syscall.SIGINT)

	if got := r.pub.Gestures(); !reflect.DeepEqual(got, []logic.Gesture{logic.LeftClicked}) {
		t.Errorf("buttons should still work with a failing sensor, got %v", got)
	}
	if got := r.tracker.Snapshot().Inputs.BusErrors; got != 20 {
		t.Errorf("bus errors: got %d, want 20", got)
	}
	if got := r.pub.SystemEventNames(); !reflect.DeepEqual(got, []string{"SHUTDOWN"}) {
		t.Errorf("system events: got %v", got)
	}
}

func TestRunLoopPublishErrorDoesNotStopLoop(t *testing.T) {
	r := newRig()
	r.pub.PublishError = errors.New("broker gone")
	clock := newScript(10 * time.Millisecond)
	clock.at(3, func() { r.watcher.SetSwitch(true) })

	r.run(t, clock, 0, 10, syscall.SIGTERM)

	if r.tracker.Snapshot().Counts.Of(logic.SlideSwitchedOn) != 1 {
		t.Error("gesture should be counted even when publishing fails")
	}
	if got := r.pub.SystemEventNames(); !reflect.DeepEqual(got, []string{"SHUTDOWN"}) {
		t.Errorf("system events: got %v", got)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	r := newRig()
	r.pub.Connected = true
	// Calls: start at 0, ticks at 5, 10, 15, 20 minutes
	clock := newScript(5 * time.Minute)

	r.run(t, clock, 15*time.Minute, 4, syscall.SIGTERM)

	if got := r.pub.SystemEventNames(); !reflect.DeepEqual(got, []string{"HEARTBEAT", "SHUTDOWN"}) {
		t.Fatalf("system events: got %v, want [HEARTBEAT SHUTDOWN]", got)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("heartbeat payload: %v", err)
	}
	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("heartbeat should report the MQTT connection")
	}
}

func TestRunLoopReportsMQTTBacklog(t *testing.T) {
	r := newRig()
	r.pub.Backlog = 12
	clock := newScript(5 * time.Minute)

	r.run(t, clock, 15*time.Minute, 4, syscall.SIGTERM)

	if got := r.tracker.Snapshot().MQTTBuffered; got != 12 {
		t.Errorf("tracker MQTTBuffered: got %d, want 12", got)
	}
	var parsed status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("heartbeat payload: %v", err)
	}
	if parsed.Status.MQTT.Buffered != 12 {
		t.Errorf("heartbeat buffered: got %d, want 12", parsed.Status.MQTT.Buffered)
	}
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	r := newRig()
	r.run(t, newScript(5*time.Minute), 0, 10, syscall.SIGTERM)

	if got := r.pub.SystemEventNames(); !reflect.DeepEqual(got, []string{"SHUTDOWN"}) {
		t.Errorf("system events: got %v, want [SHUTDOWN]", got)
	}
}

func TestRunLoopShutdownCarriesStatus(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(1, func() { r.watcher.SetLeft(true) })

	r.run(t, clock, 0, 10, syscall.SIGINT)

	var parsed status.StatusJSON
	if err := json.Unmarshal(r.pub.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("shutdown payload: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGINT" {
		t.Errorf("got event=%q reason=%q", parsed.Status.Event, parsed.Status.Reason)
	}
	if parsed.Status.Inputs.Left != "PRESSED" {
		t.Errorf("left: got %q, want PRESSED", parsed.Status.Inputs.Left)
	}
}

func TestRunLoopWithoutTracker(t *testing.T) {
	r := newRig()
	clock := newScript(10 * time.Millisecond)
	clock.at(3, func() { r.watcher.SetSwitch(true) })

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(r.arb, r.pub, nil, nil, time.Minute, clock.now, tick, sig)
	}()
	for i := 0; i < 10; i++ {
		tick <- time.Time{}
	}
	sig <- syscall.SIGTERM
	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(r.pub.Events) != 1 {
		t.Errorf("expected 1 gesture, got %v", r.pub.Gestures())
	}
	if r.pub.SystemEvents[0].RawPayload != nil {
		t.Error("shutdown without a tracker should use the plain system payload")
	}
}
