package logic

// DebounceMs is how long a raw reading must stay unchanged before the
// debounced state follows it.
const DebounceMs Ticks = 20

// SwitchInput is a debounced slide switch transition.
type SwitchInput int

const (
	SwitchNone SwitchInput = iota
	SwitchedOn
	SwitchedOff
)

// Switch is a debounced two-position slide switch.
type Switch struct {
	onLevel       bool
	debounced     bool
	prevRaw       bool
	lastRawChange Ticks
}

// NewSwitch creates a Switch whose "on" position reads as onLevel.
func NewSwitch(onLevel bool) *Switch {
	return &Switch{onLevel: onLevel}
}

// On reports whether the debounced switch is in its on position.
func (s *Switch) On() bool {
	return s.debounced == s.onLevel
}

// Update feeds one raw reading and returns a transition once the reading has
// been steady for longer than DebounceMs.
func (s *Switch) Update(raw bool, now Ticks) SwitchInput {
	if raw != s.prevRaw {
		// Every raw edge restarts the timer, even mid-debounce
		s.prevRaw = raw
		s.lastRawChange = now
		return SwitchNone
	}

	if s.debounced != raw && now-s.lastRawChange > DebounceMs {
		s.debounced = raw
		if s.debounced == s.onLevel {
			return SwitchedOn
		}
		return SwitchedOff
	}

	return SwitchNone
}
