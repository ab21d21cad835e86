// Package delay implements the adaptive inter-upload interval used by
// the upload worker: a scalar bounded by [min, max] that grows on
// empty reads and retry-worthy failures, and shrinks on successful
// deliveries.
package delay

import (
	"fmt"
	"sync"
	"time"
)

// Preset bundles the four knobs that define an adaptive delay curve.
// Exposed as a named preset (see preset.go) rather than asking every
// caller to hand-tune raw numbers.
type Preset struct {
	Initial    time.Duration `yaml:"initial"`
	Min        time.Duration `yaml:"min"`
	Max        time.Duration `yaml:"max"`
	ChangeRate float64       `yaml:"change_rate"`
}

// Validate checks that the preset describes a sane, bounded curve.
func (p Preset) Validate() error {
	if p.Min <= 0 || p.Max <= 0 || p.Min > p.Max {
		return fmt.Errorf("delay: min (%s) and max (%s) must be positive with min <= max", p.Min, p.Max)
	}
	if p.Initial < p.Min || p.Initial > p.Max {
		return fmt.Errorf("delay: initial (%s) must lie within [min, max]", p.Initial)
	}
	if p.ChangeRate <= 0 || p.ChangeRate >= 1 {
		return fmt.Errorf("delay: change_rate (%v) must be in (0, 1)", p.ChangeRate)
	}
	return nil
}

// Delay is a monotonically-bounded, mutable interval. Increase and
// Decrease never overshoot the configured bounds, and neither ever
// moves the value in the opposite direction.
type Delay struct {
	mu      sync.Mutex
	preset  Preset
	current time.Duration
}

// New creates a Delay starting at preset.Initial.
func New(preset Preset) *Delay {
	return &Delay{preset: preset, current: preset.Initial}
}

// Current returns the current delay value.
func (d *Delay) Current() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Increase multiplies the current delay by (1 + change_rate), clamped
// to max. Applied on empty reads and on retry-worthy upload failures.
func (d *Delay) Increase() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := time.Duration(float64(d.current) * (1 + d.preset.ChangeRate))
	if next > d.preset.Max || next <= 0 {
		next = d.preset.Max
	}
	if next < d.current {
		// overflow guard: never decrease on an Increase call.
		next = d.current
	}
	d.current = next
	return d.current
}

// Decrease multiplies the current delay by (1 - change_rate), clamped
// to min. Applied on successful deliveries.
func (d *Delay) Decrease() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := time.Duration(float64(d.current) * (1 - d.preset.ChangeRate))
	if next < d.preset.Min {
		next = d.preset.Min
	}
	if next > d.current {
		// overflow guard: never increase on a Decrease call.
		next = d.current
	}
	d.current = next
	return d.current
}

// Reset returns the delay to its preset's initial value.
func (d *Delay) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = d.preset.Initial
}
