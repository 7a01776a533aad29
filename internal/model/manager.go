// Package model owns discovery and lifecycle of detector model artifacts:
// directory scans, loading, hot-switching, and a consistent status view.
package model

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Cain-James/yolov11/internal/detect"
)

// Loader builds a detector from a model artifact path. The YOLO backend
// provides the production implementation; tests inject fakes.
type Loader func(path string) (detect.Detector, error)

// Status is a self-consistent snapshot of the manager state. Available is
// a copy; mutating it does not affect the manager.
type Status struct {
	ActivePath string            `json:"active_path,omitempty"`
	Loaded     bool              `json:"loaded"`
	Available  map[string]Record `json:"available_models"`
	Count      int               `json:"count"`
}

// Manager holds the single active detector for the process. All state
// transitions happen under loadMu; mu guards the fields themselves so
// Status is never a torn read. Loads run outside mu, so readers are not
// stalled by slow artifact deserialization.
type Manager struct {
	dir         string
	defaultName string
	loader      Loader

	loadMu sync.Mutex // serializes load/switch end to end

	mu         sync.RWMutex
	active     detect.Detector
	activePath string
	loaded     bool
	available  map[string]Record
}

// NewManager creates a manager over a model directory. No model is loaded
// until Load or Switch is called.
func NewManager(dir, defaultName string, loader Loader) *Manager {
	return &Manager{
		dir:         dir,
		defaultName: defaultName,
		loader:      loader,
		available:   map[string]Record{},
	}
}

// Scan rebuilds the available-model catalogue from disk and installs it
// atomically. A missing directory is not an error: it logs and leaves an
// empty catalogue.
func (m *Manager) Scan() map[string]Record {
	recs, err := ScanDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("model: directory %s does not exist, catalogue empty", m.dir)
		} else {
			log.Printf("model: scan failed: %v", err)
		}
		recs = map[string]Record{}
	}

	m.mu.Lock()
	m.available = recs
	m.mu.Unlock()

	return copyRecords(recs)
}

// Load resolves name against the latest scan and switches to it. An empty
// name means the configured default artifact. Loading the already-active
// path is an idempotent no-op.
func (m *Manager) Load(name string) error {
	if name == "" {
		name = m.defaultName
	}

	m.Scan()

	m.mu.RLock()
	rec, ok := m.available[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", detect.ErrModelNotFound, name)
	}
	return m.Switch(rec.Path)
}

// Switch replaces the active model with the artifact at path. The new
// detector is built outside the state lock and swapped in atomically; the
// previous instance is released after the swap. On failure the manager is
// left explicitly unloaded, never serving a stale model.
func (m *Manager) Switch(path string) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.mu.RLock()
	same := m.loaded && m.activePath == path
	m.mu.RUnlock()
	if same {
		log.Printf("model: %s already active, skipping reload", path)
		return nil
	}

	next, err := m.loader(path)
	if err != nil {
		m.unload()
		return fmt.Errorf("%w: load %s: %v", detect.ErrModelUnavailable, path, err)
	}

	m.mu.Lock()
	prev := m.active
	m.active = next
	m.activePath = path
	m.loaded = true
	m.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			log.Printf("model: closing previous model: %v", err)
		}
	}
	log.Printf("model: switched to %s", path)
	return nil
}

// Active returns the current detector, failing with ErrModelNotReady when
// nothing is loaded.
func (m *Manager) Active() (detect.Detector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded || m.active == nil {
		return nil, detect.ErrModelNotReady
	}
	return m.active, nil
}

// Status returns a snapshot of the manager state. Safe to call
// concurrently with Load/Switch.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		ActivePath: m.activePath,
		Loaded:     m.loaded,
		Available:  copyRecords(m.available),
		Count:      len(m.available),
	}
}

// Close releases the active model, leaving the manager unloaded.
func (m *Manager) Close() error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.mu.Lock()
	prev := m.active
	m.active = nil
	m.activePath = ""
	m.loaded = false
	m.mu.Unlock()

	if prev != nil {
		return prev.Close()
	}
	return nil
}

// unload drops any active model. Callers hold loadMu.
func (m *Manager) unload() {
	m.mu.Lock()
	prev := m.active
	m.active = nil
	m.activePath = ""
	m.loaded = false
	m.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			log.Printf("model: closing model after failed switch: %v", err)
		}
	}
}

func copyRecords(in map[string]Record) map[string]Record {
	out := make(map[string]Record, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
