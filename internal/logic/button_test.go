package logic

import "testing"

type stampedInput struct {
	at Ticks
	in ButtonInput
}

// drive feeds raw readings every step ticks from from (inclusive) to to
// (exclusive) and returns the non-None events.
func drive(b *Button, raw bool, from, to, step Ticks) []stampedInput {
	var out []stampedInput
	for now := from; now != to; now += step {
		if in := b.Update(raw, now); in != ButtonNone {
			out = append(out, stampedInput{now, in})
		}
	}
	return out
}

func TestButtonStartsReleased(t *testing.T) {
	for _, level := range []bool{true, false} {
		b := NewButton(level)
		if b.Pressed() {
			t.Errorf("pressedLevel=%v: new button should be released", level)
		}
		if b.InputPending(!level) {
			t.Errorf("pressedLevel=%v: released level should not be pending", level)
		}
	}
}

func TestButtonClick(t *testing.T) {
	b := NewButton(true)

	events := drive(b, true, 0, 100, 10)
	if len(events) != 0 {
		t.Fatalf("expected no events while pressed briefly, got %v", events)
	}
	if !b.Pressed() {
		t.Fatal("expected pressed after debounce")
	}

	events = drive(b, false, 100, 300, 10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
	// Release edge at 100, committed at 130
	if events[0].in != Click || events[0].at != 130 {
		t.Errorf("expected click at t=130, got %v", events[0])
	}
	if b.Pressed() {
		t.Error("expected released")
	}
}

func TestButtonLongPressFiresOnce(t *testing.T) {
	b := NewButton(true)

	events := drive(b, true, 0, 1000, 10)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event while held, got %v", events)
	}
	// Press committed at 30; first tick more than 200 later is 240
	if events[0].in != LongPress || events[0].at != 240 {
		t.Errorf("expected long press at t=240, got %v", events[0])
	}

	events = drive(b, false, 1000, 1100, 10)
	if len(events) != 1 || events[0].in != Release {
		t.Fatalf("expected release after long press, got %v", events)
	}
}

func TestButtonReleaseWithoutLongPressPoll(t *testing.T) {
	b := NewButton(true)

	// Sparse polls: press committed at 30, next poll is the release edge
	b.Update(true, 0)
	b.Update(true, 30)
	b.Update(false, 230)
	if got := b.Update(false, 260); got != Release {
		t.Errorf("press lasting 230 ticks: expected release, got %v", got)
	}
}

func TestButtonDoubleClick(t *testing.T) {
	b := NewButton(true)

	drive(b, true, 0, 100, 10)
	first := drive(b, false, 100, 150, 10)
	if len(first) != 1 || first[0].in != Click {
		t.Fatalf("expected first click, got %v", first)
	}

	drive(b, true, 150, 250, 10)
	second := drive(b, false, 250, 400, 10)
	if len(second) != 1 {
		t.Fatalf("expected 1 event, got %v", second)
	}
	if second[0].in != DoubleClick {
		t.Errorf("expected double click, got %v", second[0])
	}

	// A third click starts a new pair
	drive(b, true, 400, 500, 10)
	third := drive(b, false, 500, 600, 10)
	if len(third) != 1 || third[0].in != Click {
		t.Errorf("expected plain click after double click, got %v", third)
	}
}

func TestButtonSlowSecondClickIsClick(t *testing.T) {
	b := NewButton(true)

	drive(b, true, 0, 100, 10)
	drive(b, false, 100, 500, 10) // click at 130

	drive(b, true, 500, 600, 10)
	events := drive(b, false, 600, 700, 10) // click at 630, 500 after the first
	if len(events) != 1 || events[0].in != Click {
		t.Errorf("expected click outside double-click window, got %v", events)
	}
}

func TestButtonLongPressCancelsDoubleClick(t *testing.T) {
	b := NewButton(true)

	drive(b, true, 0, 100, 10)
	drive(b, false, 100, 150, 10) // click at 130

	drive(b, true, 150, 400, 10) // long press
	events := drive(b, false, 400, 450, 10)
	if len(events) != 1 || events[0].in != Release {
		t.Errorf("expected release, got %v", events)
	}
}

func TestButtonBounceShorterThanDebounce(t *testing.T) {
	b := NewButton(true)

	raw := false
	for now := Ticks(0); now < 1000; now += 15 {
		raw = !raw
		if got := b.Update(raw, now); got != ButtonNone {
			t.Fatalf("t=%d: expected no event while bouncing, got %v", now, got)
		}
	}
	if b.Pressed() {
		t.Error("stable state changed during bounce")
	}
}

func TestButtonActiveLow(t *testing.T) {
	b := NewButton(false)

	drive(b, false, 0, 100, 10)
	if !b.Pressed() {
		t.Fatal("expected pressed with raw low")
	}
	events := drive(b, true, 100, 200, 10)
	if len(events) != 1 || events[0].in != Click {
		t.Errorf("expected click, got %v", events)
	}
}

func TestButtonDuration(t *testing.T) {
	b := NewButton(true)

	b.Update(true, 0)
	b.Update(true, 30) // committed
	if got := b.Duration(130); got != 100 {
		t.Errorf("duration: got %d, want 100", got)
	}
}

func TestButtonInputPending(t *testing.T) {
	b := NewButton(true)

	if !b.InputPending(true) {
		t.Error("new raw level should be pending")
	}
	b.Update(true, 0)
	if !b.InputPending(true) {
		t.Error("edge seen but not committed should be pending")
	}
	b.Update(true, 30)
	if b.InputPending(true) {
		t.Error("committed level should not be pending")
	}
	if !b.InputPending(false) {
		t.Error("release edge should be pending")
	}
}

func TestButtonClickAcrossTickWraparound(t *testing.T) {
	b := NewButton(true)
	start := Ticks(0xFFFFFFC0)

	drive(b, true, start, start+100, 10)
	events := drive(b, false, start+100, start+200, 10)
	if len(events) != 1 || events[0].in != Click {
		t.Errorf("expected click across wraparound, got %v", events)
	}
}
