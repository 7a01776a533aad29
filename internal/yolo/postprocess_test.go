package yolo

import (
	"math"
	"testing"

	"github.com/Cain-James/yolov11/internal/geometry"
)

// buildOutput lays candidates out as the [4+numClasses, numPreds] tensor
// the network produces.
func buildOutput(numClasses, numPreds int, rows [][]float32) []float32 {
	data := make([]float32, (4+numClasses)*numPreds)
	for i, row := range rows {
		for r, v := range row {
			data[r*numPreds+i] = v
		}
	}
	return data
}

func TestDecodeFiltersAndSuppresses(t *testing.T) {
	labels := []string{"gate", "road"}
	lb := letterboxParams{scale: 1}

	// cx, cy, w, h, score(gate), score(road)
	rows := [][]float32{
		{50, 50, 20, 20, 0.90, 0.05},
		{52, 50, 20, 20, 0.80, 0.05}, // overlaps the first, same class
		{50, 50, 20, 20, 0.10, 0.12}, // below confidence
	}
	data := buildOutput(len(labels), len(rows), rows)

	dets := decode(data, labels, len(rows), lb, 100, 100, 0.25, 0.45)
	if len(dets) != 1 {
		t.Fatalf("got %d detections, want 1: %+v", len(dets), dets)
	}
	d := dets[0]
	if d.ClassName != "gate" {
		t.Fatalf("class = %q", d.ClassName)
	}
	if d.Confidence != 0.90 {
		t.Fatalf("confidence = %v", d.Confidence)
	}
	want := geometry.Box{X1: 40, Y1: 40, X2: 60, Y2: 60}
	if d.Box != want {
		t.Fatalf("box = %+v, want %+v", d.Box, want)
	}
}

func TestDecodeKeepsDistinctClasses(t *testing.T) {
	labels := []string{"gate", "road"}
	lb := letterboxParams{scale: 1}

	rows := [][]float32{
		{50, 50, 20, 20, 0.90, 0.05},
		{52, 50, 20, 20, 0.05, 0.80}, // overlaps but different class
	}
	data := buildOutput(len(labels), len(rows), rows)

	dets := decode(data, labels, len(rows), lb, 100, 100, 0.25, 0.45)
	if len(dets) != 2 {
		t.Fatalf("got %d detections, want 2 (NMS is per class)", len(dets))
	}
}

func TestDecodeUndoesLetterbox(t *testing.T) {
	labels := []string{"gate"}
	lb := letterboxParams{scale: 0.5, padX: 10, padY: 0}

	rows := [][]float32{
		{60, 30, 20, 20, 0.9},
	}
	data := buildOutput(len(labels), len(rows), rows)

	dets := decode(data, labels, len(rows), lb, 200, 100, 0.25, 0.45)
	if len(dets) != 1 {
		t.Fatalf("got %d detections", len(dets))
	}
	want := geometry.Box{X1: 80, Y1: 40, X2: 120, Y2: 80}
	if dets[0].Box != want {
		t.Fatalf("box = %+v, want %+v", dets[0].Box, want)
	}
}

func TestDecodeClampsToFrame(t *testing.T) {
	labels := []string{"gate"}
	lb := letterboxParams{scale: 1}

	// Box hangs past the right/bottom edges.
	rows := [][]float32{
		{95, 95, 20, 20, 0.9},
	}
	data := buildOutput(len(labels), len(rows), rows)

	dets := decode(data, labels, len(rows), lb, 100, 100, 0.25, 0.45)
	if len(dets) != 1 {
		t.Fatalf("got %d detections", len(dets))
	}
	b := dets[0].Box
	if b.X2 != 99 || b.Y2 != 99 {
		t.Fatalf("box not clamped: %+v", b)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("clamped box invalid: %v", err)
	}
}

func TestBoxIoU(t *testing.T) {
	a := geometry.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	if got := boxIoU(a, a); math.Abs(got-1) > 1e-9 {
		t.Fatalf("self IoU = %v", got)
	}
	b := geometry.Box{X1: 20, Y1: 20, X2: 30, Y2: 30}
	if got := boxIoU(a, b); got != 0 {
		t.Fatalf("disjoint IoU = %v", got)
	}
	c := geometry.Box{X1: 5, Y1: 0, X2: 15, Y2: 10}
	// intersection 50, union 150.
	if got := boxIoU(a, c); math.Abs(got-1.0/3.0) > 1e-9 {
		t.Fatalf("partial IoU = %v", got)
	}
}
