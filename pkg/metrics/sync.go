package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records offline queue synchronization activity.
type SyncMetrics struct {
	passDuration prometheus.Histogram
	entrySynced  prometheus.Counter
	entryFailed  prometheus.Counter
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "offline_sync_pass_duration_seconds",
		Help:    "Duration of offline queue sync passes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	entrySynced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_sync_entries_synced_total",
		Help: "Queue entries accepted by the remote policy store.",
	})
	entryFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offline_sync_entries_failed_total",
		Help: "Queue entry submissions rejected or errored.",
	})
	reg.MustRegister(passDuration, entrySynced, entryFailed)
	return &SyncMetrics{
		passDuration: passDuration,
		entrySynced:  entrySynced,
		entryFailed:  entryFailed,
	}
}

// ObservePassDuration records how long a sync pass took.
func (s *SyncMetrics) ObservePassDuration(duration time.Duration) {
	if s == nil || s.passDuration == nil {
		return
	}
	s.passDuration.Observe(duration.Seconds())
}

// IncEntrySynced increments the accepted-entry counter.
func (s *SyncMetrics) IncEntrySynced() {
	if s == nil || s.entrySynced == nil {
		return
	}
	s.entrySynced.Inc()
}

// IncEntryFailed increments the failed-entry counter.
func (s *SyncMetrics) IncEntryFailed() {
	if s == nil || s.entryFailed == nil {
		return
	}
	s.entryFailed.Inc()
}
