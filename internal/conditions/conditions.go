// Package conditions evaluates the device-health preconditions an
// upload tick must satisfy before it is allowed to run: battery,
// low-power mode, and network reachability. It is re-evaluated fresh
// on every tick — nothing is cached across ticks.
package conditions

import (
	"github.com/segment-telemetry/sdk-core/internal/providers"
)

// BlockerKind identifies which precondition is currently violated.
type BlockerKind string

const (
	BlockerBattery      BlockerKind = "battery"
	BlockerLowPowerMode BlockerKind = "low_power_mode"
	BlockerNetwork      BlockerKind = "network"
)

// Blocker describes a single violated precondition.
type Blocker struct {
	Kind        BlockerKind
	Description string
}

// lowBatteryThreshold is the level, inclusive, below which an
// unplugged device blocks uploads.
const lowBatteryThreshold = 10

// Conditions evaluates upload preconditions from read-only device
// providers. Upload may proceed iff Blockers() returns an empty set —
// necessary but not sufficient, since the Reader must also have a
// batch available.
type Conditions struct {
	battery   providers.BatteryStatusProvider
	lowPower  providers.LowPowerModeProvider
	network   providers.NetworkInfoProvider
}

// New builds a Conditions evaluator over the given providers. Any
// provider may be nil, in which case that precondition never blocks —
// useful for platforms or tests that don't model it.
func New(battery providers.BatteryStatusProvider, lowPower providers.LowPowerModeProvider, network providers.NetworkInfoProvider) *Conditions {
	return &Conditions{battery: battery, lowPower: lowPower, network: network}
}

// Blockers returns every currently-violated precondition. An empty
// slice means upload may proceed.
func (c *Conditions) Blockers() []Blocker {
	var blockers []Blocker

	var batt providers.Battery
	haveBattery := c.battery != nil
	if haveBattery {
		batt = c.battery.BatteryStatus()
	}

	// Battery: block only while discharging at or below the threshold.
	// Charging or full batteries never block, regardless of level.
	if haveBattery && batt.State == providers.BatteryUnplugged && batt.Level <= lowBatteryThreshold {
		blockers = append(blockers, Blocker{
			Kind:        BlockerBattery,
			Description: "battery unplugged and at or below the low-battery threshold",
		})
	}

	// Low power mode: block unless the battery is already full.
	if c.lowPower != nil && c.lowPower.LowPowerModeEnabled() {
		if !(haveBattery && batt.State == providers.BatteryFull) {
			blockers = append(blockers, Blocker{
				Kind:        BlockerLowPowerMode,
				Description: "device low power mode is enabled",
			})
		}
	}

	if c.network != nil {
		net := c.network.NetworkInfo()
		if net.Reachability == providers.ReachabilityUnreachable {
			desc := net.Description
			if desc == "" {
				desc = "network unreachable"
			}
			blockers = append(blockers, Blocker{Kind: BlockerNetwork, Description: desc})
		}
	}

	return blockers
}
