// Package detect defines the detection data model shared by the model
// manager, the YOLO backend, and the rule engine, plus the error taxonomy
// for the inference path.
package detect

import (
	"context"
	"errors"
	"image"

	"github.com/Cain-James/yolov11/internal/geometry"
)

// Typed failures surfaced by the model manager and detection pipeline.
var (
	// ErrModelNotFound means the requested model name is not in the
	// registry catalogue.
	ErrModelNotFound = errors.New("model not found")

	// ErrModelUnavailable means a load or switch was attempted and failed;
	// the manager is left explicitly unloaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelNotReady means an inference was requested with no active model.
	ErrModelNotReady = errors.New("model not ready")

	// ErrInferenceFailed means the classifier call itself failed.
	ErrInferenceFailed = errors.New("inference failed")
)

// RawDetection is one object as reported by the classifier, before
// category mapping.
type RawDetection struct {
	ClassName  string
	Confidence float32
	Box        geometry.Box
}

// Detection is a categorized detection. Instances are created once per
// detected object per image and are not shared across requests.
type Detection struct {
	Class       string       `json:"class"`
	DisplayName string       `json:"display_name"`
	Category    string       `json:"category"`
	Color       string       `json:"color"`
	Confidence  float32      `json:"confidence"`
	Box         geometry.Box `json:"bbox"`
}

// Detector is the classifier collaborator: one synchronous call per image.
type Detector interface {
	// Detect runs inference on the image and returns the raw detections.
	// A failure wraps ErrInferenceFailed.
	Detect(ctx context.Context, img image.Image) ([]RawDetection, error)

	// Close releases the model instance. The manager calls it when a model
	// is replaced so peak memory stays bounded.
	Close() error
}
