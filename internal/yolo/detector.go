// Package yolo runs YOLO-family object detection models through ONNX
// Runtime. It is the production implementation of the detect.Detector
// collaborator; the model manager owns its lifecycle.
package yolo

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Cain-James/yolov11/internal/category"
	"github.com/Cain-James/yolov11/internal/detect"
)

// Options tune a detector instance. Zero values fall back to the
// conventional YOLO settings.
type Options struct {
	InputSize     int      // square network input, default 640
	ConfThreshold float32  // minimum class confidence, default 0.25
	IOUThreshold  float32  // NMS overlap cutoff, default 0.45
	Labels        []string // class vocabulary; default site-layout vocabulary
}

// defaultLabels is the training class order of the site-layout detector.
var defaultLabels = []string{
	category.ClassTowerCrane,
	category.ClassCrane,
	category.ClassExcavator,
	category.ClassMixer,
	category.ClassDormitory,
	category.ClassOffice,
	category.ClassToilet,
	category.ClassRebarYard,
	category.ClassStaircase,
	category.ClassGate,
	category.ClassRedLine,
	category.ClassRoad,
	category.ClassMainBuilding,
	category.ClassMaterialYard,
	category.ClassHazmatYard,
	category.ClassCarWash,
	category.ClassSedimentationTank,
}

// Detector wraps one ONNX session with preallocated input/output tensors.
// Run is guarded by a mutex; the tensors are reused across calls.
type Detector struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	labels    []string
	inputSize int
	numPreds  int
	conf      float32
	iou       float32

	mu sync.Mutex
}

// Load initializes the ONNX runtime (once per process) and creates a
// session for the model artifact at path.
func Load(path string, opts Options) (*Detector, error) {
	if opts.InputSize <= 0 {
		opts.InputSize = 640
	}
	if opts.ConfThreshold <= 0 {
		opts.ConfThreshold = 0.25
	}
	if opts.IOUThreshold <= 0 {
		opts.IOUThreshold = 0.45
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", path, err)
	}

	if !ort.IsInitialized() {
		libPath := resolveSharedLibraryPath(filepath.Dir(path))
		if libPath == "" {
			return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
		}
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	labels := opts.Labels
	if labels == nil {
		labels = loadLabelSidecar(path)
	}
	if labels == nil {
		labels = defaultLabels
	}

	// Anchor-free YOLO heads predict at strides 8, 16 and 32.
	s := opts.InputSize
	numPreds := (s/8)*(s/8) + (s/16)*(s/16) + (s/32)*(s/32)

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(s), int64(s)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(4+len(labels)), int64(numPreds)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		path,
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Detector{
		session:   session,
		input:     input,
		output:    output,
		labels:    labels,
		inputSize: s,
		numPreds:  numPreds,
		conf:      opts.ConfThreshold,
		iou:       opts.IOUThreshold,
	}, nil
}

// Detect runs one inference over the image. Failures wrap
// detect.ErrInferenceFailed.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]detect.RawDetection, error) {
	if d == nil || d.session == nil {
		return nil, fmt.Errorf("%w: detector not initialized", detect.ErrInferenceFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", detect.ErrInferenceFailed, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", detect.ErrInferenceFailed)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	lb := letterbox(img, d.inputSize, d.input.GetData())

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: onnx run: %v", detect.ErrInferenceFailed, err)
	}

	dets := decode(d.output.GetData(), d.labels, d.numPreds, lb, bounds.Dx(), bounds.Dy(), d.conf, d.iou)
	return dets, nil
}

// Close releases the session and tensors.
func (d *Detector) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.input != nil {
		d.input.Destroy()
		d.input = nil
	}
	if d.output != nil {
		d.output.Destroy()
		d.output = nil
	}
	return nil
}

// loadLabelSidecar reads an optional "<model>.labels.json" array next to
// the artifact.
func loadLabelSidecar(modelPath string) []string {
	sidecar := strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".labels.json"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return nil
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil || len(labels) == 0 {
		return nil
	}
	return labels
}

// resolveSharedLibraryPath locates the platform onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common
// names/locations are probed, starting next to the model artifacts.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
