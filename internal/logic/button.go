package logic

// Button timing.
const (
	// ClickedCutoffMs separates a click from a long press.
	ClickedCutoffMs Ticks = 200
	// DoubleClickMs is the longest gap between the release of one click and
	// the release of the next for the pair to count as a double click.
	DoubleClickMs Ticks = 300
)

// ButtonInput is a debounced push-button event.
type ButtonInput int

const (
	ButtonNone ButtonInput = iota
	Click
	LongPress
	Release
	DoubleClick
)

// Button is a debounced momentary push-button.
type Button struct {
	pressedLevel     bool
	debounced        bool
	prevRaw          bool
	lastRawChange    Ticks
	lastStableChange Ticks

	// longReported is set once LongPress has fired for the current press.
	longReported bool

	// clickArmed is set after a click that may become the first half of a
	// double click; lastClick is when it was released.
	clickArmed bool
	lastClick  Ticks
}

// NewButton creates a Button that reads pressedLevel while held down.
// The button starts out released.
func NewButton(pressedLevel bool) *Button {
	return &Button{
		pressedLevel: pressedLevel,
		debounced:    !pressedLevel,
		prevRaw:      !pressedLevel,
	}
}

// Pressed reports whether the debounced button is held down.
func (b *Button) Pressed() bool {
	return b.debounced == b.pressedLevel
}

// Duration returns how long the button has been in its current debounced state.
func (b *Button) Duration(now Ticks) Ticks {
	return now - b.lastStableChange
}

// InputPending reports whether raw differs from what the button has settled
// on, i.e. an edge was seen that the debounce has not committed yet.
func (b *Button) InputPending(raw bool) bool {
	return raw != b.prevRaw || raw != b.debounced
}

// Update feeds one raw reading and returns at most one event.
func (b *Button) Update(raw bool, now Ticks) ButtonInput {
	if raw != b.prevRaw {
		b.prevRaw = raw
		b.lastRawChange = now
		return ButtonNone
	}

	if b.debounced != raw {
		if now-b.lastRawChange <= DebounceMs {
			return ButtonNone
		}
		held := now - b.lastStableChange
		b.debounced = raw
		b.lastStableChange = now

		if b.Pressed() {
			b.longReported = false
			return ButtonNone
		}
		return b.released(held, now)
	}

	if b.Pressed() && !b.longReported && now-b.lastStableChange > ClickedCutoffMs {
		b.longReported = true
		return LongPress
	}

	return ButtonNone
}

// released classifies a committed release after a press lasting held ticks.
func (b *Button) released(held, now Ticks) ButtonInput {
	if b.longReported || held > ClickedCutoffMs {
		b.clickArmed = false
		return Release
	}

	if b.clickArmed && now-b.lastClick <= DoubleClickMs {
		b.clickArmed = false
		return DoubleClick
	}

	b.clickArmed = true
	b.lastClick = now
	return Click
}
