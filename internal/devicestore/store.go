package devicestore

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
	"github.com/utsav7416/smart-home-controls/internal/registry"
	"github.com/utsav7416/smart-home-controls/internal/usage"
)

// SnapshotKey is the persisted device-state record name. Every mutation
// rewrites the full snapshot under this key, and the broker notifies
// subscribers after each write.
const SnapshotKey = "smart_home_devices"

// Store holds the authoritative in-memory device states for all rooms.
// Device state is rebuilt from registry defaults every session; only the
// usage ledger is cross-session persistent.
type Store struct {
	mu       sync.Mutex
	rooms    model.Snapshot
	kv       *keyval.Broker
	recorder *usage.Recorder
	now      func() time.Time
}

func New(kv *keyval.Broker, recorder *usage.Recorder) *Store {
	return NewWithClock(kv, recorder, time.Now)
}

// NewWithClock injects the clock for deterministic tests.
func NewWithClock(kv *keyval.Broker, recorder *usage.Recorder, now func() time.Time) *Store {
	s := &Store{
		rooms:    model.Snapshot{},
		kv:       kv,
		recorder: recorder,
		now:      now,
	}
	for _, room := range registry.Rooms() {
		s.rooms[room] = registry.Defaults(room)
	}

	s.mu.Lock()
	s.persistLocked()
	s.mu.Unlock()

	return s
}

// Toggle flips a device's on/off state. A nonexistent room or device id is a
// silent no-op: no state change, no event.
func (s *Store) Toggle(room string, deviceID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(room, deviceID)
	if d == nil {
		return
	}

	d.IsOn = !d.IsOn
	newState := 0
	if d.IsOn {
		newState = 1
	}

	log.Debug().
		Str("room", room).
		Str("device", d.Name).
		Bool("is_on", d.IsOn).
		Msg("Device toggled")

	s.recorder.Record(room, d.Name, model.ActionToggle, &newState, s.now())
	s.persistLocked()
}

// SetValue sets a device's adjustable value. Range enforcement lives at the
// control surface; the store assumes pre-validated input. Nonexistent
// devices are a silent no-op.
func (s *Store) SetValue(room string, deviceID int, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(room, deviceID)
	if d == nil {
		return
	}

	d.Value = value
	v := value

	log.Debug().
		Str("room", room).
		Str("device", d.Name).
		Int("value", value).
		Msg("Device adjusted")

	s.recorder.Record(room, d.Name, model.ActionAdjust, &v, s.now())
	s.persistLocked()
}

// Device returns a copy of one device, with capability attached, and whether
// it exists.
func (s *Store) Device(room string, deviceID int) (model.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.findLocked(room, deviceID)
	if d == nil {
		return model.Device{}, false
	}
	out := *d
	out.Capability = registry.Capability(room, out.Name)
	return out, true
}

// Snapshot returns a deep copy of all rooms with capability tags reattached
// from the registry.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := model.Snapshot{}
	for room, devices := range s.rooms {
		copied := make([]model.Device, len(devices))
		copy(copied, devices)
		for i := range copied {
			copied[i].Capability = registry.Capability(room, copied[i].Name)
		}
		out[room] = copied
	}
	return out
}

func (s *Store) findLocked(room string, deviceID int) *model.Device {
	devices, ok := s.rooms[room]
	if !ok {
		return nil
	}
	for i := range devices {
		if devices[i].ID == deviceID {
			return &devices[i]
		}
	}
	return nil
}

// persistLocked writes the full snapshot. Capability tags are stripped; they
// are registry-derived presentation data, reattached at read time.
func (s *Store) persistLocked() {
	stripped := model.Snapshot{}
	for room, devices := range s.rooms {
		copied := make([]model.Device, len(devices))
		copy(copied, devices)
		for i := range copied {
			copied[i].Capability = ""
		}
		stripped[room] = copied
	}

	raw, err := json.Marshal(stripped)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal device snapshot")
		return
	}
	if err := s.kv.Set(SnapshotKey, string(raw)); err != nil {
		log.Warn().Err(err).Msg("Failed to persist device snapshot")
	}
}
