package game

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	EventBufferSize     = 1024                   // Circular buffer size
	MaxEventsPerSec     = 10000                  // Global rate limit
	MaxEventsPerActor   = 100                    // Per-actor rate limit per second
	BatchFlushSize      = 64                     // Events per batch write
	BatchFlushInterval  = 100 * time.Millisecond // How often to flush
	ActorLimiterCleanup = 5 * time.Minute        // Cleanup interval for actor limiters
)

// EventLog provides bounded, rate-limited event logging with backpressure.
// Events land in a ring buffer; a writer goroutine drains it to a JSONL file.
type EventLog struct {
	// Circular buffer guarded by mu. Slots in [readHead, writeHead) are
	// pending; older slots stay readable through Recent until overwritten.
	mu        sync.Mutex
	buffer    [EventBufferSize]Event
	writeHead uint64
	readHead  uint64

	// Rate limiting for flood protection
	globalLimiter *rate.Limiter
	actorLimit    rate.Limit
	actorLimiters sync.Map // map[string]*actorLimiterEntry

	// Async writer
	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// File output. fileMu is taken before mu and guards batch.
	filePath string
	file     *os.File
	out      *bufio.Writer
	fileMu   sync.Mutex
	batch    []Event

	// Lossless logs drain the buffer inline instead of dropping when full
	lossless bool

	// Stats for flood detection and monitoring
	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
	writtenCount atomic.Uint64
}

// actorLimiterEntry tracks per-actor rate limiting
type actorLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // unix nano
}

// NewEventLog creates a new bounded event log with the default limits.
func NewEventLog() *EventLog {
	return NewEventLogWithLimits(MaxEventsPerSec, MaxEventsPerActor)
}

// NewEventLogWithLimits creates an event log with custom rates.
// rate.Inf disables the corresponding limiter.
func NewEventLogWithLimits(global, perActor rate.Limit) *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(global, burstFor(global)),
		actorLimit:    perActor,
		stopChan:      make(chan struct{}),
		batch:         make([]Event, 0, BatchFlushSize),
	}
}

// NewReplayEventLog creates a log that never drops: no rate limits, and a
// full buffer is written out by the emitting goroutine. Headless runs use
// it because they emit minutes of game time within one flush interval.
func NewReplayEventLog() *EventLog {
	el := NewEventLogWithLimits(rate.Inf, rate.Inf)
	el.lossless = true
	return el
}

func burstFor(l rate.Limit) int {
	if l == rate.Inf {
		return 0
	}
	b := int(l / 10)
	if b < 1 {
		b = 1
	}
	return b
}

// Start begins the async writer goroutine. An empty path keeps events in
// memory only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	el.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrapf(err, "open event log %s", filePath)
		}
		el.file = file
		el.out = bufio.NewWriter(file)
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()

	return nil
}

// Stop flushes pending events and closes the file. Safe to call twice.
func (el *EventLog) Stop() {
	if !el.running.Load() {
		return
	}
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.out.Flush()
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Running reports whether the log accepts events.
func (el *EventLog) Running() bool { return el.running.Load() }

// Emit adds an event with rate limiting.
// Returns false if rate limited or the log is stopped.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	if !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}

	// Per-actor rate limit (one actor cannot flood the log)
	if event.ActorID != "" && el.actorLimit != rate.Inf {
		if !el.getActorLimiter(event.ActorID).Allow() {
			el.droppedCount.Add(1)
			return false
		}
	}

	if el.lossless {
		for el.bufferFull() && el.drainBatch() > 0 {
		}
	}

	el.mu.Lock()
	el.writeHead++
	head := el.writeHead
	// Buffer full: drop the oldest pending event (rolling window)
	if head-el.readHead > EventBufferSize {
		el.readHead++
		el.droppedCount.Add(1)
	}
	event.Sequence = head
	el.buffer[head%EventBufferSize] = event
	el.mu.Unlock()

	el.totalCount.Add(1)
	return true
}

// EmitSimple is a convenience method to emit an event with automatic creation
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, gameMs int64, actorID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, gameMs, actorID, payload))
}

// Recent returns up to n of the newest events, oldest first.
func (el *EventLog) Recent(n int) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()

	avail := el.writeHead
	if avail > EventBufferSize {
		avail = EventBufferSize
	}
	if n <= 0 || uint64(n) > avail {
		n = int(avail)
	}
	out := make([]Event, 0, n)
	for seq := el.writeHead - uint64(n) + 1; seq <= el.writeHead; seq++ {
		out = append(out, el.buffer[seq%EventBufferSize])
	}
	return out
}

// getActorLimiter returns/creates a per-actor rate limiter
func (el *EventLog) getActorLimiter(actorID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if entry, ok := el.actorLimiters.Load(actorID); ok {
		e := entry.(*actorLimiterEntry)
		e.lastUsed.Store(now)
		return e.limiter
	}

	entry := &actorLimiterEntry{
		limiter: rate.NewLimiter(el.actorLimit, burstFor(el.actorLimit)),
	}
	entry.lastUsed.Store(now)
	actual, _ := el.actorLimiters.LoadOrStore(actorID, entry)
	return actual.(*actorLimiterEntry).limiter
}

// writerLoop batches and writes events to disk asynchronously
func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			// Final drain
			for el.drainBatch() > 0 {
			}
			return

		case <-ticker.C:
			el.drainBatch()
		}
	}
}

// drainBatch moves up to BatchFlushSize pending events to the file and
// returns how many it took. Memory-only logs just mark them consumed.
func (el *EventLog) drainBatch() int {
	el.fileMu.Lock()
	defer el.fileMu.Unlock()

	el.batch = el.collectBatch(el.batch[:0])
	if len(el.batch) > 0 {
		el.flushBatch(el.batch)
	}
	return len(el.batch)
}

func (el *EventLog) bufferFull() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.writeHead-el.readHead >= EventBufferSize
}

// cleanupLoop removes stale actor limiters; enemies come and go constantly.
func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(ActorLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.cleanupActorLimiters(time.Now().Add(-ActorLimiterCleanup))
		}
	}
}

// cleanupActorLimiters removes limiters unused since cutoff
func (el *EventLog) cleanupActorLimiters(cutoff time.Time) {
	el.actorLimiters.Range(func(key, value interface{}) bool {
		entry := value.(*actorLimiterEntry)
		if entry.lastUsed.Load() < cutoff.UnixNano() {
			el.actorLimiters.Delete(key)
		}
		return true
	})
}

// collectBatch reads pending events from the circular buffer
func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()

	for el.readHead < el.writeHead && len(batch) < BatchFlushSize {
		el.readHead++
		batch = append(batch, el.buffer[el.readHead%EventBufferSize])
	}
	return batch
}

// flushBatch writes events to disk (append-only, newline-delimited JSON).
// Caller holds fileMu.
func (el *EventLog) flushBatch(batch []Event) {
	if el.out == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		el.out.Write(data)
		el.out.WriteByte('\n')
		el.writtenCount.Add(1)
	}
	el.out.Flush()
}

// EventLogStats is a point-in-time view of the log counters.
type EventLogStats struct {
	Total   uint64 `json:"total"`
	Dropped uint64 `json:"dropped"`
	Written uint64 `json:"written"`
	Pending uint64 `json:"pending"`
	Running bool   `json:"running"`
	Path    string `json:"path,omitempty"`
}

// GetStats returns counters for monitoring
func (el *EventLog) GetStats() EventLogStats {
	el.mu.Lock()
	pending := el.writeHead - el.readHead
	el.mu.Unlock()

	return EventLogStats{
		Total:   el.totalCount.Load(),
		Dropped: el.droppedCount.Load(),
		Written: el.writtenCount.Load(),
		Pending: pending,
		Running: el.running.Load(),
		Path:    el.filePath,
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return el.droppedCount.Load()
}

// GetTotalCount returns the total number of events accepted
func (el *EventLog) GetTotalCount() uint64 {
	return el.totalCount.Load()
}
