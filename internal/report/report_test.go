package report

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cain-James/yolov11/internal/rules"
)

func sampleResults() []rules.Result {
	return []rules.Result{
		{RuleID: "1.5.8-2", Severity: rules.SeverityImportant, Status: rules.StatusCompliant, Message: "1 gate(s) provided"},
		{RuleID: "1.5.4-1", Severity: rules.SeverityImportant, Status: rules.StatusNonCompliant, Message: "no rebar processing yard detected"},
		{RuleID: "1.5.1-1", Severity: rules.SeverityImportant, Status: rules.StatusUndetectable, Message: "not detected"},
	}
}

func TestNewEventSummarizesResults(t *testing.T) {
	ev := NewEvent("best.onnx", "site.png", 7, sampleResults())
	if ev.ID == "" {
		t.Fatal("event id missing")
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("timestamp missing")
	}
	if ev.DetectionCount != 7 {
		t.Fatalf("detection count = %d", ev.DetectionCount)
	}
	want := Summary{Compliant: 1, NonCompliant: 1, Undetectable: 1}
	if ev.Summary != want {
		t.Fatalf("summary = %+v, want %+v", ev.Summary, want)
	}
}

func TestFileSinkWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "compliance.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := sink.Deliver(context.Background(), NewEvent("best.onnx", "site.png", 3, sampleResults())); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if len(ev.Results) != 3 {
			t.Fatalf("line %d carries %d results", lines, len(ev.Results))
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("got %d lines, want 2", lines)
	}
}

func TestEmitterDeliversToSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compliance.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	em := NewEmitter(EmitterConfig{QueueSize: 8, Workers: 1}, []Sink{sink})
	em.Emit(context.Background(), NewEvent("best.onnx", "", 0, sampleResults()))
	em.Close(context.Background())

	if got := em.Enqueued(); got != 1 {
		t.Fatalf("enqueued = %d, want 1", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("nothing delivered to the sink")
	}
}

func TestEmitterDropsWhenClosed(t *testing.T) {
	em := NewEmitter(EmitterConfig{QueueSize: 1, ShutdownTimeout: 100 * time.Millisecond}, nil)
	em.Close(context.Background())

	em.Emit(context.Background(), NewEvent("best.onnx", "", 0, nil))
	if got := em.Dropped(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
}
