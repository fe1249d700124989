package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utsav7416/smart-home-controls/internal/devicestore"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
)

func TestOffDeviceContributesZero(t *testing.T) {
	for _, value := range []int{0, 50, 100} {
		d := model.Device{Name: "AC", IsOn: false, Property: model.PropTemp, Value: value}
		assert.Equal(t, 0.0, Contribution(d))
	}
}

func TestACMultiplierMinimizedAtSetpoint(t *testing.T) {
	at := func(value int) float64 {
		return Multiplier(model.Device{Name: "AC", IsOn: true, Property: model.PropTemp, Value: value})
	}

	assert.Equal(t, 0.5, at(72))

	// Monotonically increasing as the setting diverges in either direction.
	prev := at(72)
	for v := 73; v <= 85; v++ {
		cur := at(v)
		assert.Greater(t, cur, prev, "expected multiplier to increase at %d", v)
		prev = cur
	}
	prev = at(72)
	for v := 71; v >= 60; v-- {
		cur := at(v)
		assert.Greater(t, cur, prev, "expected multiplier to increase at %d", v)
		prev = cur
	}
}

func TestACContributionAtSetpoint(t *testing.T) {
	d := model.Device{Name: "AC", IsOn: true, Property: model.PropTemp, Value: 72}
	// 3500W x 0.5 / 1000
	assert.InDelta(t, 1.75, Contribution(d), 1e-9)
}

func TestWaterHeaterKeepsGenericTempCurve(t *testing.T) {
	d := model.Device{Name: "Water Heater", IsOn: true, Property: model.PropTemp, Value: 105}
	assert.InDelta(t, 1.05, Multiplier(d), 1e-9)
}

func TestVolumeMultiplier(t *testing.T) {
	at := func(value int) float64 {
		return Multiplier(model.Device{Name: "TV", IsOn: true, Property: model.PropVolume, Value: value})
	}
	assert.InDelta(t, 0.8, at(0), 1e-9)
	assert.InDelta(t, 1.0, at(50), 1e-9)
	assert.InDelta(t, 1.2, at(100), 1e-9)
}

func TestAllDevicesOffYieldsFallbackExactly(t *testing.T) {
	snap := model.Snapshot{
		"Living Room": {
			{ID: 1, Name: "Main Light", IsOn: false, Property: model.PropBrightness, Value: 70},
			{ID: 2, Name: "AC", IsOn: false, Property: model.PropTemp, Value: 72},
		},
	}

	got := Estimate(snap)
	assert.Equal(t, model.EnergySnapshot{TotalKWh: 2.5, ActiveDevices: 4}, got)
}

func TestEstimateRoundsToTwoDecimals(t *testing.T) {
	snap := model.Snapshot{
		"Living Room": {
			{ID: 1, Name: "Main Light", IsOn: true, Property: model.PropBrightness, Value: 33},
		},
	}

	// 60 x 0.33 / 1000 = 0.0198 -> 0.02
	got := Estimate(snap)
	assert.Equal(t, 0.02, got.TotalKWh)
	assert.Equal(t, 1, got.ActiveDevices)
}

func TestEstimateSumsAcrossRooms(t *testing.T) {
	snap := model.Snapshot{
		"Living Room": {
			{ID: 2, Name: "AC", IsOn: true, Property: model.PropTemp, Value: 72},
		},
		"Bathroom": {
			{ID: 2, Name: "Water Heater", IsOn: true, Property: model.PropTemp, Value: 100},
		},
	}

	// AC: 1.75, Water Heater: 4000 x 1.0 / 1000 = 4.0
	got := Estimate(snap)
	assert.InDelta(t, 5.75, got.TotalKWh, 1e-9)
	assert.Equal(t, 2, got.ActiveDevices)
}

func TestFromStoreMissingSnapshotFallsBack(t *testing.T) {
	kv := keyval.NewBroker(keyval.NewMemory())
	assert.Equal(t, Fallback(), FromStore(kv))
}

func TestFromStoreCorruptSnapshotFallsBack(t *testing.T) {
	kv := keyval.NewBroker(keyval.NewMemory())
	require.NoError(t, kv.Set(devicestore.SnapshotKey, "{not json"))
	assert.Equal(t, Fallback(), FromStore(kv))
}

func TestFromStoreReadsPersistedSnapshot(t *testing.T) {
	kv := keyval.NewBroker(keyval.NewMemory())
	require.NoError(t, kv.Set(devicestore.SnapshotKey,
		`{"Living Room":[{"id":2,"name":"AC","isOn":true,"controlProperty":"temp","value":72}]}`))

	got := FromStore(kv)
	assert.InDelta(t, 1.75, got.TotalKWh, 1e-9)
	assert.Equal(t, 1, got.ActiveDevices)
}

func TestUnknownDeviceNameUsesDefaultWattage(t *testing.T) {
	d := model.Device{Name: "Mystery Gadget", IsOn: true, Property: model.PropPower, Value: 100}
	// 100W default x 1.0 / 1000
	assert.InDelta(t, 0.1, Contribution(d), 1e-9)
}
