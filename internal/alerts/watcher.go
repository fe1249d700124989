package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/datadog"
	"github.com/utsav7416/smart-home-controls/internal/energy"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
)

// Notifier dispatches one outbound alert. The email client satisfies this;
// tests substitute a mock.
type Notifier interface {
	Send(subject, message string) error
}

// Watcher polls the estimator's output on its own cadence, decoupled from
// device-mutation signals and UI refresh. Each tick runs the cooldown gate
// and dispatches at most one notification. Dispatch failure leaves the gate
// eligible: the next tick simply retries, with no extra backoff.
type Watcher struct {
	kv       *keyval.Broker
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

func NewWatcher(kv *keyval.Broker, notifier Notifier, interval time.Duration) *Watcher {
	return &Watcher{
		kv:       kv,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (w *Watcher) Run() {
	go func() {
		log.Info().Dur("interval", w.interval).Msg("Starting alert watcher")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				log.Info().Msg("Alert watcher stopped")
				return
			case <-ticker.C:
				w.evaluateCycle(w.now())
			}
		}
	}()
}

// Stop cancels the watcher ticker. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *Watcher) evaluateCycle(now time.Time) {
	settings := LoadSettings(w.kv)
	snap := energy.FromStore(w.kv)

	level, ok := Evaluate(settings, snap, now)
	if !ok {
		return
	}

	subject, message := composeAlert(level, snap)
	if err := w.notifier.Send(subject, message); err != nil {
		// Gate stays eligible; the next cycle retries.
		log.Warn().Err(err).Str("level", string(level)).Msg("Alert dispatch failed")
		return
	}

	datadog.Count("alerts.dispatched", 1, fmt.Sprintf("level:%s", level))
	log.Info().
		Str("level", string(level)).
		Int("active_devices", snap.ActiveDevices).
		Msg("Alert dispatched")

	settings.LastAlerts[level] = now.UnixMilli()
	if err := SaveSettings(w.kv, settings); err != nil {
		log.Warn().Err(err).Msg("Failed to persist alert cooldown state")
	}
}

func composeAlert(level model.AlertLevel, snap model.EnergySnapshot) (subject, message string) {
	switch level {
	case model.AlertHigh:
		subject = "High energy usage alert"
	default:
		subject = "Elevated energy usage alert"
	}
	message = fmt.Sprintf(
		"%d devices are currently active with an estimated draw of %.2f kWh. Consider turning off devices you are not using.",
		snap.ActiveDevices, snap.TotalKWh)
	return subject, message
}
