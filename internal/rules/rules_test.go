package rules

import (
	"strings"
	"testing"

	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/geometry"
)

func staticRule(id string, out Outcome) Rule {
	return Rule{
		ID:          id,
		Category:    "Test",
		Description: "static " + id,
		Severity:    SeverityNormal,
		Check:       func([]detect.Detection) Outcome { return out },
	}
}

func TestNewEngineRejectsDuplicateIDs(t *testing.T) {
	_, err := NewEngine([]Rule{
		staticRule("r-1", Outcome{StatusCompliant, "ok"}),
		staticRule("r-1", Outcome{StatusCompliant, "ok"}),
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNewEngineRejectsMissingPredicate(t *testing.T) {
	_, err := NewEngine([]Rule{{ID: "r-1", Category: "Test", Severity: SeverityNormal}})
	if err == nil {
		t.Fatal("expected missing predicate error")
	}
}

func TestEvaluateReturnsOneResultPerRule(t *testing.T) {
	catalogue := []Rule{
		staticRule("r-1", Outcome{StatusCompliant, "ok"}),
		staticRule("r-2", Outcome{StatusNonCompliant, "bad"}),
		staticRule("r-3", Outcome{StatusUndetectable, "unknown"}),
	}
	eng, err := NewEngine(catalogue)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	results := eng.Evaluate(nil)
	if len(results) != len(catalogue) {
		t.Fatalf("got %d results, want %d", len(results), len(catalogue))
	}

	// The output id set is exactly the registered id set, in order.
	for i, r := range results {
		if r.RuleID != catalogue[i].ID {
			t.Fatalf("result %d has id %q, want %q", i, r.RuleID, catalogue[i].ID)
		}
		if r.Description != catalogue[i].Description || r.Severity != catalogue[i].Severity {
			t.Fatalf("result %d lost rule metadata: %+v", i, r)
		}
	}
	if results[1].Status != StatusNonCompliant {
		t.Fatalf("result status = %q, want non_compliant", results[1].Status)
	}
}

func TestEvaluateContainsPanickingPredicate(t *testing.T) {
	catalogue := []Rule{
		staticRule("r-1", Outcome{StatusCompliant, "ok"}),
		{
			ID:          "r-2",
			Category:    "Test",
			Description: "always explodes",
			Severity:    SeverityCritical,
			Check: func(dets []detect.Detection) Outcome {
				var boxes []geometry.Box
				_ = boxes[3] // out of range
				return Outcome{StatusCompliant, "unreachable"}
			},
		},
		staticRule("r-3", Outcome{StatusCompliant, "ok"}),
	}
	eng, err := NewEngine(catalogue)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	results := eng.Evaluate(nil)
	if len(results) != 3 {
		t.Fatalf("one failing rule aborted the batch: %d results", len(results))
	}
	if results[1].Status != StatusCheckFailed {
		t.Fatalf("failing rule status = %q, want check_failed", results[1].Status)
	}
	if !strings.Contains(results[1].Message, "check error") {
		t.Fatalf("failure message = %q", results[1].Message)
	}
	if results[0].Status != StatusCompliant || results[2].Status != StatusCompliant {
		t.Fatal("neighbouring rules must evaluate normally")
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	dets := []detect.Detection{
		{Class: "gate", Box: geometry.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}},
	}
	eng, err := NewEngine(Catalog(DefaultThresholds()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	eng.Evaluate(dets)
	if dets[0].Class != "gate" || dets[0].Box.X2 != 10 {
		t.Fatalf("input detections mutated: %+v", dets[0])
	}
}

func TestCatalogueIDsAreUniqueAndOrdered(t *testing.T) {
	catalogue := Catalog(DefaultThresholds())
	if _, err := NewEngine(catalogue); err != nil {
		t.Fatalf("catalogue invalid: %v", err)
	}

	eng, _ := NewEngine(catalogue)
	first := eng.Evaluate(nil)
	second := eng.Evaluate(nil)
	for i := range first {
		if first[i].RuleID != second[i].RuleID {
			t.Fatalf("evaluation order unstable at %d: %q vs %q", i, first[i].RuleID, second[i].RuleID)
		}
	}
}
