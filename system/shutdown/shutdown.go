package shutdown

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	mu    sync.Mutex
	hooks []func()
)

// Register adds a teardown hook. Hooks run in reverse registration order so
// consumers stop before the stores they read from.
func Register(hook func()) {
	mu.Lock()
	defer mu.Unlock()
	hooks = append(hooks, hook)
}

// Shutdown runs every registered hook exactly once. Widget-scoped timers are
// cancelled unconditionally here; in-flight network requests are left to
// resolve and their results discarded.
func Shutdown() {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		pending[i]()
	}
	log.Info().Msg("Shutdown complete")
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Shutdown()
}
