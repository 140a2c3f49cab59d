//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWatcher watches GPIO lines on actual hardware using the Linux GPIO
// character device.
type RealWatcher struct {
	chip      *gpiocdev.Chip
	left      *gpiocdev.Line
	right     *gpiocdev.Line
	slide     *gpiocdev.Line
	interrupt *gpiocdev.Line
}

// NewRealWatcher requests the input lines on the named chip and binds each
// to its handler. The current level of every digital input is delivered to
// its handler before NewRealWatcher returns.
func NewRealWatcher(chipName string, pins Pins, h Handlers) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	w := &RealWatcher{chip: chip}

	// Buttons pull down and read high while pressed.
	if w.left, err = requestLevel(chip, pins.Left, gpiocdev.WithPullDown, h.Left); err != nil {
		w.Close()
		return nil, fmt.Errorf("request left button pin %d: %w", pins.Left, err)
	}
	if w.right, err = requestLevel(chip, pins.Right, gpiocdev.WithPullDown, h.Right); err != nil {
		w.Close()
		return nil, fmt.Errorf("request right button pin %d: %w", pins.Right, err)
	}
	if w.slide, err = requestLevel(chip, pins.Switch, gpiocdev.WithPullUp, h.Switch); err != nil {
		w.Close()
		return nil, fmt.Errorf("request switch pin %d: %w", pins.Switch, err)
	}

	interrupt := h.Interrupt
	if interrupt == nil {
		interrupt = func() {}
	}
	w.interrupt, err = chip.RequestLine(pins.Interrupt,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { interrupt() }))
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("request interrupt pin %d: %w", pins.Interrupt, err)
	}

	return w, nil
}

// requestLevel requests a line with both-edge detection whose level feeds
// set. A nil set only requests the line.
func requestLevel(chip *gpiocdev.Chip, offset int, bias gpiocdev.LineReqOption, set func(bool)) (*gpiocdev.Line, error) {
	feed := newLevelFeed(set)
	line, err := chip.RequestLine(offset,
		bias,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			feed.edge(evt.Type == gpiocdev.LineEventRisingEdge)
		}))
	if err != nil {
		return nil, err
	}

	if err := feed.bind(line.Value); err != nil {
		line.Close()
		return nil, fmt.Errorf("read initial level: %w", err)
	}
	return line, nil
}

// Levels returns the raw levels of the buttons and switch.
func (w *RealWatcher) Levels() (bool, bool, bool, error) {
	left, err := w.left.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read left button: %w", err)
	}
	right, err := w.right.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read right button: %w", err)
	}
	slide, err := w.slide.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read switch: %w", err)
	}
	return left == 1, right == 1, slide == 1, nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (w *RealWatcher) Close() error {
	var errs []error

	for _, l := range []struct {
		name string
		line *gpiocdev.Line
	}{
		{"left", w.left},
		{"right", w.right},
		{"switch", w.slide},
		{"interrupt", w.interrupt},
	} {
		if l.line == nil {
			continue
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", l.name, err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
