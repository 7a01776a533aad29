// Package rules evaluates the spatial safety/layout rule catalogue over
// one set of categorized detections. Each rule is isolated: a predicate
// failure becomes a per-rule result row, never an aborted batch.
package rules

import (
	"fmt"

	"github.com/Cain-James/yolov11/internal/detect"
)

// Severity ranks how serious a rule violation is.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityNormal    Severity = "normal"
)

// Status is the outcome of one rule check.
type Status string

const (
	// StatusCompliant means the geometric condition holds.
	StatusCompliant Status = "compliant"
	// StatusNonCompliant means the relevant classes are present but the
	// condition fails.
	StatusNonCompliant Status = "non_compliant"
	// StatusUndetectable means the detections required for the check are
	// entirely absent. This is not a violation.
	StatusUndetectable Status = "undetectable"
	// StatusCheckFailed means the predicate itself failed; the failure is
	// scoped to this rule only.
	StatusCheckFailed Status = "check_failed"
)

// Outcome is what a predicate reports: a status plus a human message.
type Outcome struct {
	Status  Status
	Message string
}

// Predicate is a pure function of the detection set. It must not mutate
// the input slice or carry state across calls.
type Predicate func(detections []detect.Detection) Outcome

// Rule is one entry of the catalogue. Rules are registered once at engine
// construction and never change afterwards.
type Rule struct {
	ID          string
	Category    string
	Description string
	Severity    Severity
	Check       Predicate
}

// Result is the per-rule output of an evaluation, produced fresh on every
// call.
type Result struct {
	RuleID      string   `json:"rule_id"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Status      Status   `json:"status"`
	Message     string   `json:"message"`
}

// Engine holds an ordered, immutable rule catalogue.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine from the given catalogue. Rule IDs must be
// unique; evaluation order is registration order.
func NewEngine(catalogue []Rule) (*Engine, error) {
	seen := make(map[string]bool, len(catalogue))
	for _, r := range catalogue {
		if r.ID == "" {
			return nil, fmt.Errorf("rule with empty id (category %q)", r.Category)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		if r.Check == nil {
			return nil, fmt.Errorf("rule %s has no predicate", r.ID)
		}
		seen[r.ID] = true
	}
	rules := make([]Rule, len(catalogue))
	copy(rules, catalogue)
	return &Engine{rules: rules}, nil
}

// Rules returns a copy of the registered catalogue.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs every registered rule against the detection set and
// returns exactly one result per rule, in registration order. One failing
// rule never aborts the batch.
func (e *Engine) Evaluate(detections []detect.Detection) []Result {
	results := make([]Result, 0, len(e.rules))
	for _, r := range e.rules {
		out := runChecked(r, detections)
		results = append(results, Result{
			RuleID:      r.ID,
			Category:    r.Category,
			Description: r.Description,
			Severity:    r.Severity,
			Status:      out.Status,
			Message:     out.Message,
		})
	}
	return results
}

// runChecked invokes the predicate, converting a panic into a
// check_failed outcome scoped to this rule.
func runChecked(r Rule, detections []detect.Detection) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{
				Status:  StatusCheckFailed,
				Message: fmt.Sprintf("check error: %v", rec),
			}
		}
	}()
	return r.Check(detections)
}
