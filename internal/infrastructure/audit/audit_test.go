package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRecorder_SubmitAndClose(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := NewRecorder(8, log)
	r.Submit(Record{ClientID: "t1", Referer: "https://a.com/page", Allowed: true})
	r.Submit(Record{ClientID: "t2", Referer: "", Allowed: false})
	r.Close()

	out := buf.String()
	if !strings.Contains(out, `"client_id":"t1"`) {
		t.Errorf("expected t1 record in output, got %q", out)
	}
	if !strings.Contains(out, `"outcome":"allowed"`) {
		t.Errorf("expected allowed outcome in output, got %q", out)
	}
	if !strings.Contains(out, `"outcome":"denied"`) {
		t.Errorf("expected denied outcome in output, got %q", out)
	}
}

func TestRecorder_SubmitNeverBlocks(t *testing.T) {
	log := zerolog.Nop()
	r := NewRecorder(1, log)
	defer r.Close()

	done := make(chan struct{})
	go func() {
		// Far more records than the queue holds; Submit must drop, not block.
		for i := 0; i < 1000; i++ {
			r.Submit(Record{ClientID: "t1", Allowed: true})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}

func TestRecorder_CloseIdempotent(t *testing.T) {
	r := NewRecorder(4, zerolog.Nop())
	r.Close()
	r.Close()
}
