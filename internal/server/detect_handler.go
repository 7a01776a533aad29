package server

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"

	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/pipeline"
)

// detectResponse mirrors the historical API shape: a success flag plus a
// data envelope.
type detectResponse struct {
	Success bool       `json:"success"`
	Data    detectData `json:"data"`
}

type detectData struct {
	Detections  any    `json:"detections"`
	ClassCounts any    `json:"class_counts"`
	Rules       any    `json:"rules,omitempty"`
	Message     string `json:"message"`
}

func detectError(message string) detectResponse {
	return detectResponse{
		Success: false,
		Data: detectData{
			Detections:  []struct{}{},
			ClassCounts: map[string]struct{}{},
			Message:     message,
		},
	}
}

// handleDetect accepts a multipart image upload, runs the detection
// pipeline, and returns detections plus the compliance report.
//
// Form fields: "file" (required image), "model_path" (optional override),
// "check_rules" (optional, "false" skips rule evaluation).
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, detectError("upload missing or too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detectError("no uploaded file found"))
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detectError("cannot decode image"))
		return
	}

	opts := pipeline.Options{
		ModelOverride: r.FormValue("model_path"),
		ImageName:     header.Filename,
		CheckRules:    r.FormValue("check_rules") != "false",
	}

	res, err := s.pipeline.Process(r.Context(), img, opts)
	if err != nil {
		log.Printf("detect %q failed: %v", header.Filename, err)
		writeJSON(w, statusForError(err), detectError(errorMessage(err)))
		return
	}

	writeJSON(w, http.StatusOK, detectResponse{
		Success: true,
		Data: detectData{
			Detections:  res.Detections,
			ClassCounts: res.ClassCounts,
			Rules:       res.Rules,
			Message:     "detection complete",
		},
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, detect.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, detect.ErrModelNotReady), errors.Is(err, detect.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, detect.ErrModelNotFound):
		return "requested model not found"
	case errors.Is(err, detect.ErrModelNotReady):
		return "no model loaded"
	case errors.Is(err, detect.ErrModelUnavailable):
		return "model switch failed"
	case errors.Is(err, detect.ErrInferenceFailed):
		return "inference failed"
	default:
		return "detection failed"
	}
}
