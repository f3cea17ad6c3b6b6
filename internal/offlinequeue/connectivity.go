package offlinequeue

import (
	"context"
	"sync"
	"time"

	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

// ConnectivityMonitor exposes the single "is online" signal and delivers
// offline→online / online→offline transitions to subscribers. Subscribe
// returns a cancel func; callers must invoke it on teardown so no
// subscription leaks.
type ConnectivityMonitor interface {
	Online() bool
	Subscribe(onOnline, onOffline func()) (cancel func())
}

type listener struct {
	onOnline  func()
	onOffline func()
}

// ManualMonitor is a ConnectivityMonitor whose state is flipped by the
// caller. It backs tests and the server-side submission path, which is
// always online.
type ManualMonitor struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]listener
}

// NewManualMonitor builds a monitor starting in the given state.
func NewManualMonitor(online bool) *ManualMonitor {
	return &ManualMonitor{online: online, listeners: make(map[int]listener)}
}

// Online reports the current state.
func (m *ManualMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers transition callbacks and returns their cancel func.
func (m *ManualMonitor) Subscribe(onOnline, onOffline func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener{onOnline: onOnline, onOffline: onOffline}
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// SetOnline flips the state, notifying subscribers only on a transition.
func (m *ManualMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subscribed := make([]listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		subscribed = append(subscribed, l)
	}
	m.mu.Unlock()

	for _, l := range subscribed {
		if online && l.onOnline != nil {
			l.onOnline()
		}
		if !online && l.onOffline != nil {
			l.onOffline()
		}
	}
}

// Probe checks whether the remote side is reachable right now.
type Probe func(ctx context.Context) error

// ProbeMonitor derives connectivity from a periodic reachability probe, the
// daemon equivalent of the browser's online/offline events.
type ProbeMonitor struct {
	*ManualMonitor

	probe    Probe
	interval time.Duration
	logg     *logger.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewProbeMonitor builds a monitor that probes at the given interval. The
// initial state is determined by one synchronous probe at Start.
func NewProbeMonitor(probe Probe, interval time.Duration, logg *logger.Logger) *ProbeMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ProbeMonitor{
		ManualMonitor: NewManualMonitor(false),
		probe:         probe,
		interval:      interval,
		logg:          logg,
	}
}

// Start performs the initial probe and begins the polling loop.
func (m *ProbeMonitor) Start(ctx context.Context) {
	probeCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.SetOnline(m.probe(probeCtx) == nil)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-probeCtx.Done():
				return
			case <-ticker.C:
				online := m.probe(probeCtx) == nil
				if online != m.Online() && m.logg != nil {
					if online {
						m.logg.Info(probeCtx, "connectivity regained")
					} else {
						m.logg.Warn(probeCtx, "connectivity lost")
					}
				}
				m.SetOnline(online)
			}
		}
	}()
}

// Stop halts the polling loop.
func (m *ProbeMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}
