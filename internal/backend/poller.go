package backend

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Endpoints polled from the remote backend. Payloads are opaque JSON passed
// through to presentation widgets as-is.
var endpoints = map[string]string{
	"geofence":  "/api/geofence/status",
	"analytics": "/api/analytics/summary",
}

// Result is the latest outcome for one endpoint: either the raw payload or
// the failure reason for inline display.
type Result struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Poller periodically fetches the backend-dependent page data. Requests are
// fire-and-forget relative to the tick loop; an in-flight request is never
// cancelled on teardown, its late result is simply discarded.
type Poller struct {
	client   *resty.Client
	interval time.Duration

	mu      sync.RWMutex
	results map[string]Result
	stopped bool

	stop chan struct{}
	once sync.Once
}

func NewPoller(baseURL string, interval time.Duration) *Poller {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(8 * time.Second)

	return &Poller{
		client:   client,
		interval: interval,
		results:  make(map[string]Result),
		stop:     make(chan struct{}),
	}
}

func (p *Poller) Run() {
	go func() {
		log.Info().Dur("interval", p.interval).Msg("Starting backend poller")
		p.pollAll()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				log.Info().Msg("Backend poller stopped")
				return
			case <-ticker.C:
				p.pollAll()
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.once.Do(func() {
		close(p.stop)
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
	})
}

// Result returns the latest outcome for an endpoint name and whether the
// name is known.
func (p *Poller) Result(name string) (Result, bool) {
	if _, ok := endpoints[name]; !ok {
		return Result{}, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.results[name], true
}

func (p *Poller) pollAll() {
	for name, path := range endpoints {
		go p.poll(name, path)
	}
}

func (p *Poller) poll(name, path string) {
	result := Result{FetchedAt: time.Now()}

	resp, err := p.client.R().Get(path)
	switch {
	case err != nil:
		result.Error = err.Error()
		log.Warn().Err(err).Str("endpoint", name).Msg("Backend poll failed")
	case !resp.IsSuccess():
		result.Error = fmt.Sprintf("backend returned status %d", resp.StatusCode())
		log.Warn().Int("status", resp.StatusCode()).Str("endpoint", name).Msg("Backend poll failed")
	default:
		result.Data = json.RawMessage(resp.Body())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.results[name] = result
}
