package usage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
)

func newTestRecorder(t *testing.T) (*Recorder, *keyval.Broker) {
	broker := keyval.NewBroker(keyval.NewMemory())
	return NewRecorder(broker, 90), broker
}

func TestRecordCreatesBucketsOnFirstUse(t *testing.T) {
	r, _ := newTestRecorder(t)
	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.Local)

	on := 1
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, now)

	counts := r.DayCounts("Kitchen", "Fan")
	assert.Equal(t, 1, counts["2026-08-28"])
}

func TestCountMatchesActionsLength(t *testing.T) {
	r, _ := newTestRecorder(t)
	now := time.Date(2026, 8, 28, 9, 30, 0, 0, time.Local)

	on := 1
	v := 55
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, now)
	r.Record("Kitchen", "Fan", model.ActionAdjust, &v, now.Add(time.Minute))
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, now.Add(2*time.Minute))

	ledger := r.Ledger()
	usage := ledger[BucketKey("Kitchen", "Fan")]["2026-08-28"]
	assert.Equal(t, 3, usage.Count)
	assert.Len(t, usage.Actions, 3)
	assert.Equal(t, model.ActionAdjust, usage.Actions[1].Type)
	require.NotNil(t, usage.Actions[1].Value)
	assert.Equal(t, 55, *usage.Actions[1].Value)
}

func TestRecordSplitsByCalendarDay(t *testing.T) {
	r, _ := newTestRecorder(t)
	on := 1

	r.Record("Kitchen", "Fan", model.ActionToggle, &on, time.Date(2026, 8, 27, 23, 59, 0, 0, time.Local))
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, time.Date(2026, 8, 28, 0, 1, 0, 0, time.Local))

	counts := r.DayCounts("Kitchen", "Fan")
	assert.Equal(t, 1, counts["2026-08-27"])
	assert.Equal(t, 1, counts["2026-08-28"])
}

func TestLedgerPersistsAcrossRecorders(t *testing.T) {
	broker := keyval.NewBroker(keyval.NewMemory())
	first := NewRecorder(broker, 90)

	on := 1
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	first.Record("Bedroom", "Fan", model.ActionToggle, &on, now)

	// A new session reloads the same ledger from the store.
	second := NewRecorder(broker, 90)
	counts := second.DayCounts("Bedroom", "Fan")
	assert.Equal(t, 1, counts["2026-08-28"])
}

func TestCorruptLedgerReadsAsNoHistory(t *testing.T) {
	broker := keyval.NewBroker(keyval.NewMemory())
	require.NoError(t, broker.Set(LedgerKey, "{broken"))

	r := NewRecorder(broker, 90)
	assert.Empty(t, r.DayCounts("Kitchen", "Fan"))
}

func TestRetentionPrunesOldDays(t *testing.T) {
	broker := keyval.NewBroker(keyval.NewMemory())
	r := NewRecorder(broker, 30)

	on := 1
	old := time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local)
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, old)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, now)

	counts := r.DayCounts("Kitchen", "Fan")
	assert.NotContains(t, counts, "2026-06-01")
	assert.Equal(t, 1, counts["2026-08-28"])
}

func TestPersistedFormMatchesLedgerShape(t *testing.T) {
	r, broker := newTestRecorder(t)
	on := 1
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	r.Record("Kitchen", "Fan", model.ActionToggle, &on, now)

	raw, err := broker.Get(LedgerKey)
	require.NoError(t, err)

	var stored model.UsageLedger
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, 1, stored["Kitchen-Fan"]["2026-08-28"].Count)
}
