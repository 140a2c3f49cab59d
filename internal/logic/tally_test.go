package logic

import (
	"testing"
	"time"
)

func TestTallyRecord(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTally(start)

	tl.Record(Event{Timestamp: start, Gesture: LeftClicked})
	tl.Record(Event{Timestamp: start, Gesture: LeftClicked})
	tl.Record(Event{Timestamp: start.Add(time.Second), Gesture: Shaken})
	tl.Record(Event{Timestamp: start, Gesture: None})

	counts := tl.Counts()
	if counts.Of(LeftClicked) != 2 {
		t.Errorf("LeftClicked: got %d, want 2", counts.Of(LeftClicked))
	}
	if counts.Of(Shaken) != 1 {
		t.Errorf("Shaken: got %d, want 1", counts.Of(Shaken))
	}
	if counts.Of(None) != 0 {
		t.Errorf("None should never be counted, got %d", counts.Of(None))
	}
	if counts.Total() != 3 {
		t.Errorf("Total: got %d, want 3", counts.Total())
	}
	if tl.Last().Gesture != Shaken {
		t.Errorf("Last: got %v, want shaken", tl.Last().Gesture)
	}
}

func TestTallyCountsIsCopy(t *testing.T) {
	tl := NewTally(time.Now())
	tl.Record(Event{Gesture: BothPressed})

	c := tl.Counts()
	c[BothPressed] = 100

	if tl.Counts().Of(BothPressed) != 1 {
		t.Error("modifying returned counts should not affect the tally")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTally(start)

	if hb := tl.CheckHeartbeat(start.Add(time.Hour), 0); hb != nil {
		t.Error("expected nil heartbeat when interval is 0")
	}
	if hb := tl.CheckHeartbeat(start.Add(time.Hour), -time.Second); hb != nil {
		t.Error("expected nil heartbeat when interval is negative")
	}
}

func TestHeartbeatInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTally(start)
	interval := 15 * time.Minute

	if hb := tl.CheckHeartbeat(start.Add(14*time.Minute), interval); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	tl.Record(Event{Gesture: DoubleTapped})

	hb := tl.CheckHeartbeat(start.Add(15*time.Minute), interval)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", hb.Uptime)
	}
	if hb.Counts.Of(DoubleTapped) != 1 {
		t.Errorf("Counts: got %d double taps, want 1", hb.Counts.Of(DoubleTapped))
	}

	// Next heartbeat is measured from the last one
	if hb := tl.CheckHeartbeat(start.Add(20*time.Minute), interval); hb != nil {
		t.Error("expected no heartbeat 5m after the last")
	}
	if hb := tl.CheckHeartbeat(start.Add(30*time.Minute), interval); hb == nil {
		t.Error("expected heartbeat 15m after the last")
	}
}
