package delay

import "time"

// Named performance presets, mirroring how the rest of this codebase
// bundles tunables into named profiles instead of asking every caller
// to hand-pick raw numbers. A preset is an open question the
// originating source left product-configurable; these four are the
// shapes actually shipped by comparable mobile SDKs:
//
//   - Instant: near real-time, for debug/dev builds.
//   - RealTime: fast ramp, still power-conscious.
//   - Regular: the default for production builds.
//   - Low: battery/data-conscious, long upload intervals.
var (
	PresetInstant = Preset{
		Initial:    500 * time.Millisecond,
		Min:        100 * time.Millisecond,
		Max:        5 * time.Second,
		ChangeRate: 0.10,
	}
	PresetRealTime = Preset{
		Initial:    5 * time.Second,
		Min:        1 * time.Second,
		Max:        10 * time.Second,
		ChangeRate: 0.10,
	}
	PresetRegular = Preset{
		Initial:    5 * time.Second,
		Min:        5 * time.Second,
		Max:        20 * time.Second,
		ChangeRate: 0.10,
	}
	PresetLow = Preset{
		Initial:    5 * time.Second,
		Min:        5 * time.Second,
		Max:        40 * time.Second,
		ChangeRate: 0.10,
	}
)
