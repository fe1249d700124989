package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utsav7416/smart-home-controls/internal/model"
)

func TestRoomsAreStable(t *testing.T) {
	assert.Equal(t, Rooms(), Rooms())
	for _, room := range Rooms() {
		assert.NotEmpty(t, Definitions(room), "every room has at least one device")
	}
}

func TestDefaultsWithinValidRange(t *testing.T) {
	for _, room := range Rooms() {
		for _, d := range Defaults(room) {
			bounds := ValueRange(d.Name, d.Property)
			assert.GreaterOrEqual(t, d.Value, bounds.Min, "%s/%s default below range", room, d.Name)
			assert.LessOrEqual(t, d.Value, bounds.Max, "%s/%s default above range", room, d.Name)
			assert.NotEmpty(t, d.Capability)
		}
	}
}

func TestDeviceIDsUniqueWithinRoom(t *testing.T) {
	for _, room := range Rooms() {
		seen := map[int]bool{}
		for _, d := range Definitions(room) {
			require.False(t, seen[d.ID], "duplicate device id %d in %s", d.ID, room)
			seen[d.ID] = true
		}
	}
}

func TestTemperatureRangesDiverge(t *testing.T) {
	ac := ValueRange("AC", model.PropTemp)
	heater := ValueRange("Water Heater", model.PropTemp)

	assert.Equal(t, Range{Min: 60, Max: 85}, ac)
	assert.Equal(t, Range{Min: 40, Max: 120}, heater)

	// Non-temperature properties stay on the percent scale.
	assert.Equal(t, Range{Min: 0, Max: 100}, ValueRange("Fan", model.PropSpeed))
}

func TestBaseWattsKnownAndDefault(t *testing.T) {
	assert.Equal(t, 60.0, BaseWatts("Main Light"))
	assert.Equal(t, 3500.0, BaseWatts("AC"))
	assert.Equal(t, 4000.0, BaseWatts("Water Heater"))
	assert.Equal(t, 100.0, BaseWatts("Unheard Of Device"))
}

func TestCapabilityLookup(t *testing.T) {
	assert.Equal(t, "climate", Capability("Living Room", "AC"))
	assert.Empty(t, Capability("Living Room", "Nope"))
	assert.Empty(t, Capability("Nope", "AC"))
}
