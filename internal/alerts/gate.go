package alerts

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
)

// SettingsKey is the persisted alert config/state record name.
const SettingsKey = "smart_home_alerts"

func DefaultSettings() model.AlertSettings {
	return model.AlertSettings{
		Enabled:               true,
		HighUsageEnabled:      true,
		MediumUsageEnabled:    true,
		HighUsageThreshold:    8,
		MediumUsageThreshold:  5,
		CooldownPeriodMinutes: 60,
		LastAlerts:            map[model.AlertLevel]int64{},
	}
}

// Evaluate runs one cycle of the per-level state machine and returns the
// single level eligible to dispatch, if any. High takes precedence over
// medium when both conditions are met; at most one notification per cycle.
// A level inside its cooldown window stays silent until the window passes.
func Evaluate(s model.AlertSettings, snap model.EnergySnapshot, now time.Time) (model.AlertLevel, bool) {
	if !s.Enabled {
		return "", false
	}

	var candidate model.AlertLevel
	switch {
	case s.HighUsageEnabled && snap.ActiveDevices >= s.HighUsageThreshold:
		candidate = model.AlertHigh
	case s.MediumUsageEnabled && snap.ActiveDevices >= s.MediumUsageThreshold:
		candidate = model.AlertMedium
	default:
		return "", false
	}

	last := s.LastSentAt(candidate)
	if !last.IsZero() && now.Sub(last) <= s.Cooldown() {
		return "", false
	}
	return candidate, true
}

// LoadSettings reads persisted alert settings, falling back to defaults when
// the record is missing or unreadable.
func LoadSettings(kv keyval.Store) model.AlertSettings {
	raw, err := kv.Get(SettingsKey)
	if err != nil {
		return DefaultSettings()
	}

	var s model.AlertSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Msg("Persisted alert settings are unreadable, using defaults")
		return DefaultSettings()
	}
	if s.LastAlerts == nil {
		s.LastAlerts = map[model.AlertLevel]int64{}
	}
	return s
}

func SaveSettings(kv keyval.Store, s model.AlertSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return kv.Set(SettingsKey, string(raw))
}
