package logic

import "time"

// Tally counts recognized gestures and paces heartbeat reports.
type Tally struct {
	startTime     time.Time
	counts        GestureCounts
	last          Event
	lastHeartbeat time.Time
}

// NewTally creates a Tally. The startTime is used for calculating uptime in
// heartbeat events.
func NewTally(startTime time.Time) *Tally {
	return &Tally{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Record counts a recognized gesture. None is ignored.
func (t *Tally) Record(e Event) {
	if e.Gesture <= None || e.Gesture >= numGestures {
		return
	}
	t.counts[e.Gesture]++
	t.last = e
}

// Counts returns a copy of the gesture counts.
func (t *Tally) Counts() GestureCounts {
	return t.counts
}

// Last returns the most recently recorded event. Its Gesture is None until
// something has been recorded.
func (t *Tally) Last() Event {
	return t.last
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (t *Tally) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}

	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.startTime),
		Counts:    t.counts,
	}
}
