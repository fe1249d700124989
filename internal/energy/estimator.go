package energy

import (
	"encoding/json"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/devicestore"
	"github.com/utsav7416/smart-home-controls/internal/model"
	"github.com/utsav7416/smart-home-controls/internal/registry"
)

// Floor values substituted whenever the estimate would read as an empty
// dashboard: zero total, zero active devices, or an unreadable snapshot.
// Behavioral compatibility requires these exact numbers.
const (
	FloorTotalKWh      = 2.5
	FloorActiveDevices = 4
)

const acSetpoint = 72.0

// Getter is the read side of the persisted snapshot.
type Getter interface {
	Get(key string) (string, error)
}

// Fallback is the never-empty snapshot.
func Fallback() model.EnergySnapshot {
	return model.EnergySnapshot{TotalKWh: FloorTotalKWh, ActiveDevices: FloorActiveDevices}
}

// Estimate maps current device states to an aggregate snapshot. Pure and
// stateless: same input, same output.
func Estimate(snap model.Snapshot) model.EnergySnapshot {
	var total float64
	var active int

	for _, devices := range snap {
		for _, d := range devices {
			if !d.IsOn {
				continue
			}
			active++
			total += Contribution(d)
		}
	}

	total = math.Round(total*100) / 100
	if total == 0 {
		total = FloorTotalKWh
	}
	if active == 0 {
		active = FloorActiveDevices
	}

	return model.EnergySnapshot{TotalKWh: total, ActiveDevices: active}
}

// Contribution is one device's kWh-scale draw: base watts scaled by the
// property curve. An OFF device contributes exactly 0.
func Contribution(d model.Device) float64 {
	if !d.IsOn {
		return 0
	}
	return registry.BaseWatts(d.Name) * Multiplier(d) / 1000
}

// Multiplier selects the scaling curve for a device's control property.
// The AC costs more the further its setting diverges from 72°; every other
// temperature device keeps the generic percent curve even when its control
// surface uses a different range (Water Heater included, intentionally).
func Multiplier(d model.Device) float64 {
	v := float64(d.Value)
	switch d.Property {
	case model.PropBrightness, model.PropSpeed, model.PropPressure, model.PropPower:
		return v / 100
	case model.PropTemp, model.PropTemperature:
		if d.Name == "AC" {
			return math.Abs(acSetpoint-v)/20 + 0.5
		}
		return v / 100
	case model.PropVolume:
		return 0.8 + (v/100)*0.4
	default:
		return 1
	}
}

// FromStore reads the persisted snapshot and estimates from it. A missing or
// corrupt snapshot yields the fallback rather than an error: the pipeline
// always renders some plausible number.
func FromStore(kv Getter) model.EnergySnapshot {
	raw, err := kv.Get(devicestore.SnapshotKey)
	if err != nil {
		return Fallback()
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Msg("Persisted device snapshot is unreadable, using fallback estimate")
		return Fallback()
	}
	return Estimate(snap)
}
