package service

import (
	"time"

	"sevenway/internal/core/domain"
)

// Debouncer turns raw polled button levels into clean edge events. A raw
// level must hold for the debounce window before the stable state flips,
// so contact bounce and polling jitter never produce duplicate events.
// One physical press yields exactly one PRESS, at most one LONG_PRESS,
// and one RELEASE.
type Debouncer struct {
	stableFor time.Duration
	longPress time.Duration

	primed     bool
	raw        bool
	rawSince   time.Time
	stable     bool
	pressStart time.Time
	longFired  bool
}

func NewDebouncer(stableFor, longPress time.Duration) *Debouncer {
	return &Debouncer{stableFor: stableFor, longPress: longPress}
}

// Sample feeds one raw poll of the button level and returns the events
// it produced, in order. The first sample only establishes the baseline.
func (d *Debouncer) Sample(pressed bool, now time.Time) []domain.ButtonEvent {
	if !d.primed {
		d.primed = true
		d.raw = pressed
		d.rawSince = now
		d.stable = pressed
		if pressed {
			d.pressStart = now
		}
		return nil
	}

	if pressed != d.raw {
		d.raw = pressed
		d.rawSince = now
	}

	var events []domain.ButtonEvent

	if d.raw != d.stable && now.Sub(d.rawSince) >= d.stableFor {
		d.stable = d.raw
		if d.stable {
			// the press started when the level first went high, not when
			// the debounce window confirmed it
			d.pressStart = d.rawSince
			d.longFired = false
			events = append(events, domain.ButtonEvent{Kind: domain.ButtonPress, At: now})
		} else {
			events = append(events, domain.ButtonEvent{
				Kind: domain.ButtonRelease,
				At:   now,
				Held: d.rawSince.Sub(d.pressStart),
			})
		}
	}

	if d.stable && !d.longFired && now.Sub(d.pressStart) >= d.longPress {
		d.longFired = true
		events = append(events, domain.ButtonEvent{
			Kind: domain.ButtonLongPress,
			At:   now,
			Held: now.Sub(d.pressStart),
		})
	}

	return events
}

// Pressed reports the debounced button state.
func (d *Debouncer) Pressed() bool {
	return d.stable
}

// HeldFor returns how long the button has been held, zero when released.
func (d *Debouncer) HeldFor(now time.Time) time.Duration {
	if !d.stable {
		return 0
	}
	return now.Sub(d.pressStart)
}
