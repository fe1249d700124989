package model

import "time"

type ControlProperty string

const (
	PropBrightness  ControlProperty = "brightness"
	PropSpeed       ControlProperty = "speed"
	PropTemp        ControlProperty = "temp"
	PropTemperature ControlProperty = "temperature"
	PropVolume      ControlProperty = "volume"
	PropPressure    ControlProperty = "pressure"
	PropPower       ControlProperty = "power"
)

type ActionType string

const (
	ActionToggle ActionType = "toggle"
	ActionAdjust ActionType = "adjust"
)

// Device is one simulated controllable unit. Capability is presentation
// metadata reattached from the registry at read time and never persisted.
type Device struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	IsOn       bool            `json:"isOn"`
	Property   ControlProperty `json:"controlProperty"`
	Value      int             `json:"value"`
	Capability string          `json:"capability,omitempty"`
}

// Snapshot is the full persisted device state: room name to its ordered
// device set.
type Snapshot map[string][]Device

type UsageAction struct {
	Time  time.Time  `json:"time"`
	Type  ActionType `json:"type"`
	Value *int       `json:"value,omitempty"`
}

type DayUsage struct {
	Count   int           `json:"count"`
	Actions []UsageAction `json:"actions"`
}

// UsageLedger maps "{room}-{deviceName}" to ISO calendar date to that day's
// usage. Append-only within a session.
type UsageLedger map[string]map[string]DayUsage

type EnergySnapshot struct {
	TotalKWh      float64 `json:"totalKWh"`
	ActiveDevices int     `json:"activeDeviceCount"`
}

// HeatmapCell is one of the 9 trailing-day buckets for a device.
// Intensity is 0..3 relative to the max count across the strip.
type HeatmapCell struct {
	Day       string `json:"day"`
	Count     int    `json:"count"`
	Intensity int    `json:"intensity"`
}

type AlertLevel string

const (
	AlertMedium AlertLevel = "medium"
	AlertHigh   AlertLevel = "high"
)

type AlertSettings struct {
	Enabled               bool                 `json:"enabled"`
	HighUsageEnabled      bool                 `json:"highUsageEnabled"`
	MediumUsageEnabled    bool                 `json:"mediumUsageEnabled"`
	HighUsageThreshold    int                  `json:"highUsageThreshold"`
	MediumUsageThreshold  int                  `json:"mediumUsageThreshold"`
	CooldownPeriodMinutes int                  `json:"cooldownPeriodMinutes"`
	LastAlerts            map[AlertLevel]int64 `json:"lastAlerts"` // epoch millis
}

func (s AlertSettings) Cooldown() time.Duration {
	return time.Duration(s.CooldownPeriodMinutes) * time.Minute
}

// LastSentAt returns the last successful dispatch time for a level, or the
// zero time if none has been recorded.
func (s AlertSettings) LastSentAt(level AlertLevel) time.Time {
	ms, ok := s.LastAlerts[level]
	if !ok || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
