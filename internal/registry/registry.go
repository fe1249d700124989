package registry

import "github.com/utsav7416/smart-home-controls/internal/model"

// Definition is one catalog entry: the factory default for a device slot in a
// room plus its presentation capability tag.
type Definition struct {
	ID         int
	Name       string
	Property   model.ControlProperty
	DefaultOn  bool
	DefaultVal int
	Capability string
}

// Range bounds the adjustable value for a property/device-name combination.
type Range struct {
	Min int
	Max int
}

const defaultBaseWatts = 100.0

// rooms is the fixed set of rooms and their device slots. Device state is
// rebuilt from these defaults every session; only usage history persists.
var rooms = map[string][]Definition{
	"Living Room": {
		{ID: 1, Name: "Main Light", Property: model.PropBrightness, DefaultOn: true, DefaultVal: 70, Capability: "light"},
		{ID: 2, Name: "AC", Property: model.PropTemp, DefaultOn: false, DefaultVal: 72, Capability: "climate"},
		{ID: 3, Name: "TV", Property: model.PropVolume, DefaultOn: false, DefaultVal: 40, Capability: "media"},
		{ID: 4, Name: "Floor Lamp", Property: model.PropBrightness, DefaultOn: false, DefaultVal: 50, Capability: "light"},
	},
	"Bedroom": {
		{ID: 1, Name: "Ceiling Light", Property: model.PropBrightness, DefaultOn: false, DefaultVal: 60, Capability: "light"},
		{ID: 2, Name: "Bedside Lamp", Property: model.PropBrightness, DefaultOn: true, DefaultVal: 30, Capability: "light"},
		{ID: 3, Name: "Fan", Property: model.PropSpeed, DefaultOn: false, DefaultVal: 50, Capability: "fan"},
		{ID: 4, Name: "Space Heater", Property: model.PropTemperature, DefaultOn: false, DefaultVal: 70, Capability: "climate"},
	},
	"Kitchen": {
		{ID: 1, Name: "Kitchen Light", Property: model.PropBrightness, DefaultOn: true, DefaultVal: 80, Capability: "light"},
		{ID: 2, Name: "Fan", Property: model.PropSpeed, DefaultOn: false, DefaultVal: 40, Capability: "fan"},
		{ID: 3, Name: "Refrigerator", Property: model.PropPower, DefaultOn: true, DefaultVal: 60, Capability: "appliance"},
		{ID: 4, Name: "Coffee Maker", Property: model.PropPower, DefaultOn: false, DefaultVal: 50, Capability: "appliance"},
	},
	"Bathroom": {
		{ID: 1, Name: "Bathroom Light", Property: model.PropBrightness, DefaultOn: false, DefaultVal: 70, Capability: "light"},
		{ID: 2, Name: "Water Heater", Property: model.PropTemp, DefaultOn: false, DefaultVal: 105, Capability: "climate"},
		{ID: 3, Name: "Shower", Property: model.PropPressure, DefaultOn: false, DefaultVal: 60, Capability: "plumbing"},
	},
}

// baseWatts keys device name to its nominal draw. Names absent from the table
// fall back to defaultBaseWatts.
var baseWatts = map[string]float64{
	"Main Light":     60,
	"AC":             3500,
	"TV":             150,
	"Floor Lamp":     40,
	"Ceiling Light":  55,
	"Bedside Lamp":   25,
	"Fan":            75,
	"Space Heater":   1500,
	"Kitchen Light":  65,
	"Refrigerator":   200,
	"Coffee Maker":   900,
	"Bathroom Light": 45,
	"Water Heater":   4000,
	"Shower":         80,
}

// namedRanges overrides the generic 0-100 percent range for devices whose
// control surface exposes a real-world scale.
var namedRanges = map[string]Range{
	"AC":           {Min: 60, Max: 85},
	"Water Heater": {Min: 40, Max: 120},
	"Space Heater": {Min: 50, Max: 90},
}

// Rooms returns the room names in a stable order.
func Rooms() []string {
	return []string{"Living Room", "Bedroom", "Kitchen", "Bathroom"}
}

// Definitions returns the catalog entries for a room, or nil for an unknown
// room.
func Definitions(room string) []Definition {
	return rooms[room]
}

// Defaults builds the session-initial device set for a room from the catalog.
func Defaults(room string) []model.Device {
	defs := rooms[room]
	devices := make([]model.Device, 0, len(defs))
	for _, d := range defs {
		devices = append(devices, model.Device{
			ID:         d.ID,
			Name:       d.Name,
			IsOn:       d.DefaultOn,
			Property:   d.Property,
			Value:      d.DefaultVal,
			Capability: d.Capability,
		})
	}
	return devices
}

// BaseWatts returns the nominal draw for a device name.
func BaseWatts(name string) float64 {
	if w, ok := baseWatts[name]; ok {
		return w
	}
	return defaultBaseWatts
}

// ValueRange returns the valid adjustment bounds for a device. Temperature
// devices carry per-name ranges; everything else is percent scale.
func ValueRange(name string, prop model.ControlProperty) Range {
	switch prop {
	case model.PropTemp, model.PropTemperature:
		if r, ok := namedRanges[name]; ok {
			return r
		}
	}
	return Range{Min: 0, Max: 100}
}

// Capability resolves the presentation tag for a device name within a room.
// Unknown pairs get an empty tag.
func Capability(room, name string) string {
	for _, d := range rooms[room] {
		if d.Name == name {
			return d.Capability
		}
	}
	return ""
}
