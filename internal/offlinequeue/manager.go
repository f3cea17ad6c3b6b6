package offlinequeue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
	"github.com/mariaquintana/insurecrm-backend/pkg/metrics"
)

// ManagerParams configure the queue manager.
type ManagerParams struct {
	Store    DurableStore
	Remote   RemoteStore
	Resolver ActorResolver
	Monitor  ConnectivityMonitor
	Logger   *logger.Logger
	Metrics  *metrics.SyncMetrics
	QueueKey string
	Clock    func() time.Time
}

// Manager owns the local queue: it assigns temporary ids, attempts immediate
// submission when online, and replays unsynced entries in FIFO order whenever
// connectivity returns. The queue held in memory and mirrored to the durable
// store is the single source of truth for pending work.
type Manager struct {
	store    DurableStore
	remote   RemoteStore
	resolver ActorResolver
	monitor  ConnectivityMonitor
	logg     *logger.Logger
	metrics  *metrics.SyncMetrics
	queueKey string
	clock    func() time.Time

	mu    sync.Mutex
	queue []*OfflinePolicyEntry

	// syncMu is the re-entrancy guard: at most one sync pass runs at a time,
	// a TryLock miss makes the second caller a no-op.
	syncMu sync.Mutex

	unsubscribe func()
	started     bool
}

// NewManager validates wiring and builds an idle manager; Start loads the
// persisted queue and attaches connectivity handling.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, errors.New("durable store is required")
	}
	if params.Remote == nil {
		return nil, errors.New("remote store is required")
	}
	queueKey := params.QueueKey
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		store:    params.Store,
		remote:   params.Remote,
		resolver: params.Resolver,
		monitor:  params.Monitor,
		logg:     params.Logger,
		metrics:  params.Metrics,
		queueKey: queueKey,
		clock:    clock,
	}, nil
}

// Start loads the persisted queue, subscribes to connectivity transitions,
// and, when already online, runs one synchronization pass for any stale
// queue left over from a previous session.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("manager already started")
	}
	m.started = true
	m.loadLocked(ctx)
	m.mu.Unlock()

	if m.monitor != nil {
		m.unsubscribe = m.monitor.Subscribe(
			func() { m.SyncAll(ctx) },
			nil, // going offline only flips the signal
		)
	}

	if m.online() {
		m.SyncAll(ctx)
	}
	return nil
}

// Close releases the connectivity subscription.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Create builds an entry from user input and the ambient actor, attempts one
// immediate submission when online, and persists the queue. Creation always
// yields a well-formed entry: submission and actor-lookup failures are
// absorbed into queue state, never surfaced to the caller.
func (m *Manager) Create(ctx context.Context, input CreateInput) OfflinePolicyEntry {
	createdBy := actors.CreatorRef{Type: input.Role}
	if m.resolver != nil {
		ref, err := m.resolver.Resolve(ctx, input.Role, input.AuthUserID)
		if err != nil {
			if m.logg != nil {
				m.logg.Warn(ctx, "actor resolution failed; recording entry without creator id")
			}
		} else {
			createdBy = ref
		}
	}

	tempID := NewTempID()
	policyNumber := strings.TrimSpace(input.PolicyNumber)
	if policyNumber == "" {
		policyNumber = tempID
	}

	online := m.online()
	status := enums.PolicyStatusPendingSync
	if online {
		status = enums.PolicyStatusUnderwriting
	}

	entry := &OfflinePolicyEntry{
		TempID:         tempID,
		PolicyNumber:   policyNumber,
		CustomerName:   input.CustomerName,
		PhoneNumber:    input.PhoneNumber,
		ProductID:      input.ProductID,
		PremiumAmount:  input.PremiumAmount,
		Status:         status,
		LineOfBusiness: input.LineOfBusiness,
		InsurerID:      input.InsurerID,
		PolicyStart:    input.PolicyStart,
		PolicyEnd:      input.PolicyEnd,
		CreatedAt:      m.clock().UTC(),
		CreatedBy:      createdBy,
	}

	if online {
		result := m.submit(ctx, entry)
		if result.Success {
			m.applySuccess(entry, result)
		} else {
			entry.SyncError = result.Error
		}
	}

	m.mu.Lock()
	m.queue = append(m.queue, entry)
	m.persistLocked(ctx)
	snapshot := *entry
	m.mu.Unlock()

	return snapshot
}

// SyncAll flushes every currently unsynced entry in queue order. The pass is
// best-effort and exhaustive over the snapshot taken at entry: one failure
// never aborts processing of later entries. A call while offline, or while
// another pass runs, is a no-op.
func (m *Manager) SyncAll(ctx context.Context) {
	if !m.online() {
		return
	}
	if !m.syncMu.TryLock() {
		return
	}
	defer m.syncMu.Unlock()

	start := m.clock()

	m.mu.Lock()
	pending := make([]*OfflinePolicyEntry, 0, len(m.queue))
	for _, entry := range m.queue {
		if !entry.Synced {
			pending = append(pending, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range pending {
		result := m.submit(ctx, entry)

		m.mu.Lock()
		if result.Success {
			m.applySuccess(entry, result)
			m.mu.Unlock()
			if m.metrics != nil {
				m.metrics.IncEntrySynced()
			}
			continue
		}
		entry.SyncError = result.Error
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.IncEntryFailed()
		}
		if m.logg != nil {
			entryCtx := m.logg.WithField(ctx, "temp_id", entry.TempID)
			m.logg.Warn(entryCtx, "policy entry sync failed")
		}
	}

	m.mu.Lock()
	m.persistLocked(ctx)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ObservePassDuration(m.clock().Sub(start))
	}
}

// Delete removes the entry with the given temp id, persisting the filtered
// queue in one write. It reports whether an entry was removed.
func (m *Manager) Delete(ctx context.Context, tempID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.queue[:0]
	removed := false
	for _, entry := range m.queue {
		if entry.TempID == tempID {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	m.queue = kept
	if removed {
		m.persistLocked(ctx)
	}
	return removed
}

// ClearSynced drops every synced entry, retaining unsynced ones, and persists
// the filtered queue in one write. It returns the number of dropped entries.
func (m *Manager) ClearSynced(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.queue[:0]
	dropped := 0
	for _, entry := range m.queue {
		if entry.Synced {
			dropped++
			continue
		}
		kept = append(kept, entry)
	}
	m.queue = kept
	if dropped > 0 {
		m.persistLocked(ctx)
	}
	return dropped
}

// PendingSyncCount returns how many entries still await a successful sync.
func (m *Manager) PendingSyncCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.queue {
		if !entry.Synced {
			count++
		}
	}
	return count
}

// Entries returns a copy of the queue in insertion order.
func (m *Manager) Entries() []OfflinePolicyEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]OfflinePolicyEntry, 0, len(m.queue))
	for _, entry := range m.queue {
		entries = append(entries, *entry)
	}
	return entries
}

// submit attempts one remote write for the entry. A temporary policy number
// is withheld so the remote store assigns a real one. Errors never escape:
// the caller always receives a success/failure result.
func (m *Manager) submit(ctx context.Context, entry *OfflinePolicyEntry) SubmitResult {
	policyNumber := entry.PolicyNumber
	if IsTemporaryPolicyNumber(policyNumber) {
		policyNumber = ""
	}

	result, err := m.remote.Submit(ctx, SubmitInput{
		TempID:         entry.TempID,
		PolicyNumber:   policyNumber,
		ProductID:      entry.ProductID,
		CustomerName:   entry.CustomerName,
		PhoneNumber:    entry.PhoneNumber,
		PremiumAmount:  entry.PremiumAmount,
		LineOfBusiness: entry.LineOfBusiness,
		InsurerID:      entry.InsurerID,
		PolicyStart:    entry.PolicyStart,
		PolicyEnd:      entry.PolicyEnd,
		CreatedBy:      entry.CreatedBy,
	})
	if err != nil {
		return SubmitResult{Success: false, Error: err.Error()}
	}
	if !result.Success && result.Error == "" {
		result.Error = "remote store rejected the entry"
	}
	return result
}

// applySuccess adopts the remote identifiers; synced never flips true
// without a server id.
func (m *Manager) applySuccess(entry *OfflinePolicyEntry, result SubmitResult) {
	if result.ID == "" {
		entry.SyncError = "remote store returned no id"
		return
	}
	entry.ID = result.ID
	if result.PolicyNumber != "" {
		entry.PolicyNumber = result.PolicyNumber
	}
	entry.Status = enums.PolicyStatusUnderwriting
	entry.SyncError = ""
	entry.Synced = true
}

func (m *Manager) online() bool {
	return m.monitor == nil || m.monitor.Online()
}

func (m *Manager) loadLocked(ctx context.Context) {
	raw, ok, err := m.store.Get(m.queueKey)
	if err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "failed to load offline queue", err)
		}
		return
	}
	if !ok || raw == "" {
		return
	}
	var entries []*OfflinePolicyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "offline queue is corrupt; starting empty", err)
		}
		return
	}
	m.queue = entries
}

// persistLocked writes the whole queue in one call. A failed write leaves the
// in-memory queue authoritative until the next successful write; no operation
// depends on persistence to proceed.
func (m *Manager) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(m.queue)
	if err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "failed to serialize offline queue", err)
		}
		return
	}
	if err := m.store.Set(m.queueKey, string(payload)); err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "failed to persist offline queue", err)
		}
	}
}
