// Package report delivers compliance reports to configured sinks off the
// request path. The rule engine itself never persists results; callers
// that want a durable trail attach a sink here.
package report

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cain-James/yolov11/internal/rules"
)

// Summary rolls the per-rule results up into counts per status.
type Summary struct {
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	Undetectable int `json:"undetectable"`
	CheckFailed  int `json:"check_failed"`
}

// Event is one completed compliance evaluation.
type Event struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Model          string         `json:"model"`
	Image          string         `json:"image,omitempty"`
	DetectionCount int            `json:"detection_count"`
	Results        []rules.Result `json:"results"`
	Summary        Summary        `json:"summary"`
}

// NewEvent assembles an event from an evaluation.
func NewEvent(model, imageName string, detectionCount int, results []rules.Result) *Event {
	ev := &Event{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Model:          model,
		Image:          imageName,
		DetectionCount: detectionCount,
		Results:        results,
	}
	for _, r := range results {
		switch r.Status {
		case rules.StatusCompliant:
			ev.Summary.Compliant++
		case rules.StatusNonCompliant:
			ev.Summary.NonCompliant++
		case rules.StatusUndetectable:
			ev.Summary.Undetectable++
		case rules.StatusCheckFailed:
			ev.Summary.CheckFailed++
		}
	}
	return ev
}

// Sink consumes report events (file, webhook, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}

// Emitter buffers events on a bounded queue and delivers them to sinks
// from background workers. Emit never blocks the request path; when the
// queue is full the event is dropped.
type Emitter struct {
	queue           chan *Event
	sinks           []Sink
	shutdownTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	countMu  sync.Mutex
	enqueued uint64
	dropped  uint64
}

// EmitterConfig controls queue and worker sizing.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
}

// NewEmitter starts background workers delivering to the given sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}

	e := &Emitter{
		queue:           make(chan *Event, queueSize),
		sinks:           sinks,
		shutdownTimeout: shutdownTimeout,
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

// Emit enqueues the event without blocking.
func (e *Emitter) Emit(_ context.Context, ev *Event) {
	if e == nil || ev == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.countDrop()
		return
	}
	select {
	case e.queue <- ev:
		e.countMu.Lock()
		e.enqueued++
		e.countMu.Unlock()
	default:
		e.countDrop()
	}
}

// Close stops accepting events and waits briefly for the queue to drain.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	waitCtx := ctx
	if waitCtx == nil {
		waitCtx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(waitCtx, e.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			log.Printf("report: sink %s close error: %v", s.Name(), err)
		}
	}
}

// Enqueued returns the number of events accepted so far.
func (e *Emitter) Enqueued() uint64 {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	return e.enqueued
}

// Dropped returns the number of events discarded on a full queue.
func (e *Emitter) Dropped() uint64 {
	e.countMu.Lock()
	defer e.countMu.Unlock()
	return e.dropped
}

func (e *Emitter) countDrop() {
	e.countMu.Lock()
	e.dropped++
	e.countMu.Unlock()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.queue {
		for _, s := range e.sinks {
			if err := s.Deliver(context.Background(), ev); err != nil {
				log.Printf("report: sink %s failed: %v", s.Name(), err)
			}
		}
	}
}
