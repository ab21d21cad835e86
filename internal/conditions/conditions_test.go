package conditions

import (
	"testing"

	"github.com/segment-telemetry/sdk-core/internal/providers"
)

type fakeBattery struct{ battery providers.Battery }

func (f fakeBattery) BatteryStatus() providers.Battery { return f.battery }

type fakeLowPower struct{ enabled bool }

func (f fakeLowPower) LowPowerModeEnabled() bool { return f.enabled }

type fakeNetwork struct{ network providers.Network }

func (f fakeNetwork) NetworkInfo() providers.Network { return f.network }

func hasBlocker(blockers []Blocker, kind BlockerKind) bool {
	for _, b := range blockers {
		if b.Kind == kind {
			return true
		}
	}
	return false
}

func TestNoProvidersNeverBlocks(t *testing.T) {
	c := New(nil, nil, nil)
	if blockers := c.Blockers(); len(blockers) != 0 {
		t.Errorf("Blockers() = %+v, want empty with no providers", blockers)
	}
}

func TestBatteryBlocksWhenUnpluggedAndLow(t *testing.T) {
	c := New(fakeBattery{providers.Battery{State: providers.BatteryUnplugged, Level: 5}}, nil, nil)
	blockers := c.Blockers()
	if !hasBlocker(blockers, BlockerBattery) {
		t.Errorf("Blockers() = %+v, want battery blocker", blockers)
	}
}

func TestBatteryDoesNotBlockWhenCharging(t *testing.T) {
	c := New(fakeBattery{providers.Battery{State: providers.BatteryCharging, Level: 1}}, nil, nil)
	if blockers := c.Blockers(); hasBlocker(blockers, BlockerBattery) {
		t.Errorf("Blockers() = %+v, charging battery should never block", blockers)
	}
}

func TestBatteryDoesNotBlockAboveThreshold(t *testing.T) {
	c := New(fakeBattery{providers.Battery{State: providers.BatteryUnplugged, Level: 50}}, nil, nil)
	if blockers := c.Blockers(); hasBlocker(blockers, BlockerBattery) {
		t.Errorf("Blockers() = %+v, battery above threshold should not block", blockers)
	}
}

func TestLowPowerModeBlocks(t *testing.T) {
	c := New(nil, fakeLowPower{enabled: true}, nil)
	if blockers := c.Blockers(); !hasBlocker(blockers, BlockerLowPowerMode) {
		t.Errorf("Blockers() = %+v, want low power mode blocker", blockers)
	}
}

func TestLowPowerModeDoesNotBlockWhenBatteryFull(t *testing.T) {
	c := New(fakeBattery{providers.Battery{State: providers.BatteryFull, Level: 100}}, fakeLowPower{enabled: true}, nil)
	if blockers := c.Blockers(); hasBlocker(blockers, BlockerLowPowerMode) {
		t.Errorf("Blockers() = %+v, full battery should override low power mode blocker", blockers)
	}
}

func TestNetworkUnreachableBlocks(t *testing.T) {
	c := New(nil, nil, fakeNetwork{providers.Network{Reachability: providers.ReachabilityUnreachable}})
	if blockers := c.Blockers(); !hasBlocker(blockers, BlockerNetwork) {
		t.Errorf("Blockers() = %+v, want network blocker", blockers)
	}
}

func TestNetworkReachableDoesNotBlock(t *testing.T) {
	c := New(nil, nil, fakeNetwork{providers.Network{Reachability: providers.ReachabilityReachable}})
	if blockers := c.Blockers(); hasBlocker(blockers, BlockerNetwork) {
		t.Errorf("Blockers() = %+v, reachable network should not block", blockers)
	}
}

func TestMultipleBlockersCombine(t *testing.T) {
	c := New(
		fakeBattery{providers.Battery{State: providers.BatteryUnplugged, Level: 1}},
		fakeLowPower{enabled: true},
		fakeNetwork{providers.Network{Reachability: providers.ReachabilityUnreachable}},
	)
	blockers := c.Blockers()
	if len(blockers) != 3 {
		t.Errorf("Blockers() = %+v, want all three blockers present", blockers)
	}
}
