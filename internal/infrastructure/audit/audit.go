// Package audit provides a non-blocking recorder for authorization outcomes.
// Records are queued on a buffered channel and written by a background
// goroutine so the request path never waits on the log sink.
package audit

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Record is one authorization decision.
type Record struct {
	ClientID  string
	Referer   string
	Allowed   bool
	Timestamp time.Time
}

// Recorder receives audit records and writes them asynchronously.
// Submit never blocks; records are dropped when the queue is full.
type Recorder struct {
	ch       chan Record
	log      zerolog.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRecorder creates a recorder with the given queue capacity and starts
// its writer goroutine.
func NewRecorder(buffer int, log zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	r := &Recorder{
		ch:  make(chan Record, buffer),
		log: log.With().Str("component", "audit").Logger(),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Submit enqueues a record. It never blocks and never fails the caller;
// when the queue is full the record is dropped.
func (r *Recorder) Submit(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	select {
	case r.ch <- rec:
	default:
		r.log.Warn().Msg("audit queue full, record dropped")
	}
}

// RecordAuthorization enqueues one authorization decision.
func (r *Recorder) RecordAuthorization(clientID, referer string, allowed bool) {
	r.Submit(Record{ClientID: clientID, Referer: referer, Allowed: allowed})
}

// Close drains the queue and stops the writer. Safe to call multiple times.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() {
		close(r.ch)
		r.wg.Wait()
	})
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for rec := range r.ch {
		outcome := "denied"
		if rec.Allowed {
			outcome = "allowed"
		}
		r.log.Info().
			Str("client_id", rec.ClientID).
			Str("referer", rec.Referer).
			Str("outcome", outcome).
			Time("at", rec.Timestamp).
			Msg("authorization check")
	}
}
