package metrics

import "sync"

// Signaling event names recorded by the video relay.
const (
	SignalConnect         = "signal_connect"
	SignalRejectAnonymous = "signal_reject_anonymous"
	SignalJoin            = "signal_join"
	SignalDisconnect      = "signal_disconnect"
	SignalRelayOffer      = "signal_relay_offer"
	SignalRelayAnswer     = "signal_relay_answer"
	SignalRelayICE        = "signal_relay_ice"
	SignalDropMalformed   = "signal_drop_malformed"
	SignalDropRole        = "signal_drop_role"
	SignalDropUnknown     = "signal_drop_unknown"
	SignalDropRateLimited = "signal_drop_rate_limited"
)

// Metrics is a minimal, concurrency-safe counter registry, exposed by the
// /metrics endpoint in Prometheus text format.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, delta uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.m[name] += delta
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

func (m *Metrics) Snapshot() map[string]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		snap[k] = v
	}
	return snap
}
