package yolo

import (
	"sort"

	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/geometry"
)

// candidate is one raw prediction above the confidence threshold, in
// source-image pixel space.
type candidate struct {
	classIdx int
	score    float32
	box      geometry.Box
}

// decode converts the raw [1, 4+numClasses, numPreds] output tensor into
// detections: confidence filter, letterbox undo, clamp to the source
// frame, then per-class non-maximum suppression.
func decode(data []float32, labels []string, numPreds int, lb letterboxParams, origW, origH int, conf, iou float32) []detect.RawDetection {
	var cands []candidate
	for i := 0; i < numPreds; i++ {
		bestClass := -1
		var bestScore float32
		for c := 0; c < len(labels); c++ {
			score := data[(4+c)*numPreds+i]
			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}
		if bestClass < 0 || bestScore < conf {
			continue
		}

		cx := float64(data[0*numPreds+i])
		cy := float64(data[1*numPreds+i])
		w := float64(data[2*numPreds+i])
		h := float64(data[3*numPreds+i])

		x1 := (cx - w/2 - lb.padX) / lb.scale
		y1 := (cy - h/2 - lb.padY) / lb.scale
		x2 := (cx + w/2 - lb.padX) / lb.scale
		y2 := (cy + h/2 - lb.padY) / lb.scale

		box := geometry.Box{
			X1: clamp(int(x1), 0, origW-1),
			Y1: clamp(int(y1), 0, origH-1),
			X2: clamp(int(x2), 0, origW-1),
			Y2: clamp(int(y2), 0, origH-1),
		}
		if box.X1 >= box.X2 || box.Y1 >= box.Y2 {
			continue
		}
		cands = append(cands, candidate{classIdx: bestClass, score: bestScore, box: box})
	}

	kept := nms(cands, iou)

	out := make([]detect.RawDetection, 0, len(kept))
	for _, c := range kept {
		out = append(out, detect.RawDetection{
			ClassName:  labels[c.classIdx],
			Confidence: c.score,
			Box:        c.box,
		})
	}
	return out
}

// nms suppresses overlapping candidates per class, keeping the highest
// scoring box of each cluster.
func nms(cands []candidate, iouThreshold float32) []candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	var kept []candidate
	suppressed := make([]bool, len(cands))
	for i := 0; i < len(cands); i++ {
		if suppressed[i] {
			continue
		}
		kept = append(kept, cands[i])
		for j := i + 1; j < len(cands); j++ {
			if suppressed[j] || cands[j].classIdx != cands[i].classIdx {
				continue
			}
			if boxIoU(cands[i].box, cands[j].box) > float64(iouThreshold) {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// boxIoU returns intersection-over-union of two boxes.
func boxIoU(a, b geometry.Box) float64 {
	ix1 := maxInt(a.X1, b.X1)
	iy1 := maxInt(a.Y1, b.Y1)
	ix2 := minInt(a.X2, b.X2)
	iy2 := minInt(a.Y2, b.Y2)
	if ix1 >= ix2 || iy1 >= iy2 {
		return 0
	}
	inter := float64(ix2-ix1) * float64(iy2-iy1)
	union := a.Width()*a.Height() + b.Width()*b.Height() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
