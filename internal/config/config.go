// Package config loads the service configuration from a YAML file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Models    ModelsConfig    `yaml:"models"`
	Detection DetectionConfig `yaml:"detection"`
	Geometry  GeometryConfig  `yaml:"geometry"`
	Report    ReportConfig    `yaml:"report"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`          // HTTP listen address, e.g. ":8080"
	MaxUploadMB int64  `yaml:"max_upload_mb"` // multipart upload cap
}

type ModelsConfig struct {
	Dir     string `yaml:"dir"`     // model artifact directory
	Default string `yaml:"default"` // conventional default artifact name
}

type DetectionConfig struct {
	InputSize  int     `yaml:"input_size"` // square network input
	Confidence float32 `yaml:"confidence"` // minimum class confidence
	IOU        float32 `yaml:"iou"`        // NMS overlap cutoff
}

// GeometryConfig exposes the rule thresholds. The defaults mirror the
// historical heuristics and are not calibrated; set them per drawing scale.
type GeometryConfig struct {
	NearPx           float64 `yaml:"near_px"`
	IsolationPx      float64 `yaml:"isolation_px"`
	CoverageScale    float64 `yaml:"coverage_scale"`
	PixelsPerMeter   float64 `yaml:"pixels_per_meter"`
	MinCraneSpacingM float64 `yaml:"min_crane_spacing_m"`
	MinRoadWidthM    float64 `yaml:"min_road_width_m"`
}

type ReportConfig struct {
	File      string `yaml:"file"`       // JSONL report sink path; empty disables
	QueueSize int    `yaml:"queue_size"` // emitter queue capacity
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 50
	}

	if cfg.Models.Dir == "" {
		cfg.Models.Dir = "models"
	}
	if cfg.Models.Default == "" {
		cfg.Models.Default = "best.onnx"
	}

	if cfg.Detection.InputSize <= 0 {
		cfg.Detection.InputSize = 640
	}
	if cfg.Detection.Confidence <= 0 {
		cfg.Detection.Confidence = 0.25
	}
	if cfg.Detection.IOU <= 0 {
		cfg.Detection.IOU = 0.45
	}

	if cfg.Geometry.NearPx <= 0 {
		cfg.Geometry.NearPx = 50
	}
	if cfg.Geometry.IsolationPx <= 0 {
		cfg.Geometry.IsolationPx = 100
	}
	if cfg.Geometry.CoverageScale <= 0 {
		cfg.Geometry.CoverageScale = 5
	}
	if cfg.Geometry.PixelsPerMeter <= 0 {
		cfg.Geometry.PixelsPerMeter = 0.1
	}
	if cfg.Geometry.MinCraneSpacingM <= 0 {
		cfg.Geometry.MinCraneSpacingM = 2
	}
	if cfg.Geometry.MinRoadWidthM <= 0 {
		cfg.Geometry.MinRoadWidthM = 6
	}

	if cfg.Report.QueueSize <= 0 {
		cfg.Report.QueueSize = 256
	}
}
