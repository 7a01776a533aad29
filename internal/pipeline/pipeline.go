// Package pipeline orchestrates one detection request: ensure the right
// model is active, run the classifier, map detections through the
// category catalogue, and evaluate the compliance rules.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/Cain-James/yolov11/internal/category"
	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/metrics"
	"github.com/Cain-James/yolov11/internal/model"
	"github.com/Cain-James/yolov11/internal/report"
	"github.com/Cain-James/yolov11/internal/rules"
)

// Options modify one Process call.
type Options struct {
	// ModelOverride switches to the artifact at this path before
	// detecting. A failed switch fails the whole call.
	ModelOverride string
	// ImageName tags the report event; informational only.
	ImageName string
	// CheckRules runs the compliance catalogue over the detections.
	CheckRules bool
}

// ClassCount aggregates detections per category group.
type ClassCount struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}

// Result is the outcome of one processed image.
type Result struct {
	Detections  []detect.Detection    `json:"detections"`
	ClassCounts map[string]ClassCount `json:"class_counts"`
	Rules       []rules.Result        `json:"rules,omitempty"`
}

// Pipeline wires the model manager, rule engine, report emitter and
// metrics together. Construct one per process at the composition root.
type Pipeline struct {
	models   *model.Manager
	engine   *rules.Engine
	reporter *report.Emitter
	metrics  *metrics.Metrics
}

// New creates a pipeline. reporter and metrics may be nil.
func New(models *model.Manager, engine *rules.Engine, reporter *report.Emitter, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		models:   models,
		engine:   engine,
		reporter: reporter,
		metrics:  m,
	}
}

// Process runs detection (and optionally the rule catalogue) over img.
func (p *Pipeline) Process(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if opts.ModelOverride != "" {
		if err := p.models.Switch(opts.ModelOverride); err != nil {
			return nil, err
		}
	}

	detector, err := p.models.Active()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := detector.Detect(ctx, img)
	p.metrics.ObserveInference(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	res := &Result{
		Detections:  mapDetections(raw),
		ClassCounts: countByGroup(raw),
	}
	for _, d := range res.Detections {
		p.metrics.CountDetection(d.Category)
	}

	if opts.CheckRules && p.engine != nil {
		res.Rules = p.engine.Evaluate(res.Detections)
		for _, r := range res.Rules {
			p.metrics.CountRuleResult(string(r.Status))
		}
		if p.reporter != nil {
			status := p.models.Status()
			p.reporter.Emit(ctx, report.NewEvent(status.ActivePath, opts.ImageName, len(res.Detections), res.Rules))
		}
	}

	return res, nil
}

// mapDetections attaches catalogue metadata to each raw detection.
// Unknown classes pass through with the default "Other" entry.
func mapDetections(raw []detect.RawDetection) []detect.Detection {
	out := make([]detect.Detection, 0, len(raw))
	for _, r := range raw {
		entry := category.Lookup(r.ClassName)
		out = append(out, detect.Detection{
			Class:       r.ClassName,
			DisplayName: entry.DisplayName,
			Category:    entry.Group,
			Color:       entry.Color,
			Confidence:  r.Confidence,
			Box:         r.Box,
		})
	}
	return out
}

// countByGroup builds the per-group tally of detected display names.
func countByGroup(raw []detect.RawDetection) map[string]ClassCount {
	counts := make(map[string]ClassCount)
	for _, r := range raw {
		entry := category.Lookup(r.ClassName)
		cc := counts[entry.Group]
		cc.Count++
		if !contains(cc.Items, entry.DisplayName) {
			cc.Items = append(cc.Items, entry.DisplayName)
		}
		counts[entry.Group] = cc
	}
	return counts
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
