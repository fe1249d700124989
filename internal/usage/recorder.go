package usage

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/datadog"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
)

// LedgerKey is the persisted-ledger record name.
const LedgerKey = "smart_home_usage"

const dayFormat = "2006-01-02"

// BucketKey builds the ledger key for one device in one room.
func BucketKey(room, deviceName string) string {
	return room + "-" + deviceName
}

// Recorder translates device mutations into an append-only ledger keyed by
// local calendar day. Unlike device state, the ledger survives restarts:
// it is loaded from the store at construction and persisted on every record.
type Recorder struct {
	mu            sync.Mutex
	kv            *keyval.Broker
	ledger        model.UsageLedger
	retentionDays int
}

func NewRecorder(kv *keyval.Broker, retentionDays int) *Recorder {
	r := &Recorder{
		kv:            kv,
		ledger:        model.UsageLedger{},
		retentionDays: retentionDays,
	}

	raw, err := kv.Get(LedgerKey)
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &r.ledger); err != nil {
			// Corrupt history reads as no history.
			log.Warn().Err(err).Msg("Persisted usage ledger is unreadable, starting empty")
			r.ledger = model.UsageLedger{}
		}
	}

	return r
}

// Record appends one usage event. It never fails: unknown device keys are
// created on first use and persistence errors are logged, not surfaced.
func (r *Recorder) Record(room, deviceName string, action model.ActionType, value *int, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := BucketKey(room, deviceName)
	day := now.Format(dayFormat)

	days, ok := r.ledger[key]
	if !ok {
		days = map[string]model.DayUsage{}
		r.ledger[key] = days
	}

	usage := days[day]
	usage.Count++
	usage.Actions = append(usage.Actions, model.UsageAction{
		Time:  now,
		Type:  action,
		Value: value,
	})
	days[day] = usage

	datadog.Count("usage.events", 1, "action:"+string(action))

	r.pruneLocked(now)
	r.persistLocked()
}

// DayCounts returns a copy of the per-day counts for one device bucket,
// for the heatmap aggregator. Missing buckets read as no history.
func (r *Recorder) DayCounts(room, deviceName string) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[string]int{}
	for day, usage := range r.ledger[BucketKey(room, deviceName)] {
		counts[day] = usage.Count
	}
	return counts
}

// Ledger returns a deep copy of the full ledger.
func (r *Recorder) Ledger() model.UsageLedger {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := model.UsageLedger{}
	for key, days := range r.ledger {
		outDays := map[string]model.DayUsage{}
		for day, usage := range days {
			actions := make([]model.UsageAction, len(usage.Actions))
			copy(actions, usage.Actions)
			outDays[day] = model.DayUsage{Count: usage.Count, Actions: actions}
		}
		out[key] = outDays
	}
	return out
}

// pruneLocked drops day buckets older than the retention horizon. Only the
// trailing 9 days are ever read, so this never changes observable behavior.
func (r *Recorder) pruneLocked(now time.Time) {
	if r.retentionDays <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -r.retentionDays).Format(dayFormat)
	for key, days := range r.ledger {
		for day := range days {
			if day < cutoff {
				delete(days, day)
			}
		}
		if len(days) == 0 {
			delete(r.ledger, key)
		}
	}
}

func (r *Recorder) persistLocked() {
	raw, err := json.Marshal(r.ledger)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal usage ledger")
		return
	}
	if err := r.kv.Set(LedgerKey, string(raw)); err != nil {
		log.Warn().Err(err).Msg("Failed to persist usage ledger")
	}
}
