package main

import (
	"context"
	"flag"
	"log"

	"github.com/Cain-James/yolov11/internal/config"
	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/metrics"
	"github.com/Cain-James/yolov11/internal/model"
	"github.com/Cain-James/yolov11/internal/pipeline"
	"github.com/Cain-James/yolov11/internal/report"
	"github.com/Cain-James/yolov11/internal/rules"
	"github.com/Cain-James/yolov11/internal/server"
	"github.com/Cain-James/yolov11/internal/yolo"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "yolov11.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	loader := func(path string) (detect.Detector, error) {
		return yolo.Load(path, yolo.Options{
			InputSize:     cfg.Detection.InputSize,
			ConfThreshold: cfg.Detection.Confidence,
			IOUThreshold:  cfg.Detection.IOU,
		})
	}
	models := model.NewManager(cfg.Models.Dir, cfg.Models.Default, loader)

	if err := models.Load(""); err != nil {
		// The service still starts; callers can switch to a model later.
		log.Printf("default model not loaded: %v", err)
	}

	engine, err := rules.NewEngine(rules.Catalog(rules.Thresholds{
		NearPx:           cfg.Geometry.NearPx,
		IsolationPx:      cfg.Geometry.IsolationPx,
		CoverageScale:    cfg.Geometry.CoverageScale,
		PixelsPerMeter:   cfg.Geometry.PixelsPerMeter,
		MinCraneSpacingM: cfg.Geometry.MinCraneSpacingM,
		MinRoadWidthM:    cfg.Geometry.MinRoadWidthM,
	}))
	if err != nil {
		log.Fatalf("failed to build rule catalogue: %v", err)
	}

	var sinks []report.Sink
	if cfg.Report.File != "" {
		sink, err := report.NewFileSink(cfg.Report.File)
		if err != nil {
			log.Fatalf("failed to open report sink: %v", err)
		}
		sinks = append(sinks, sink)
	}
	reporter := report.NewEmitter(report.EmitterConfig{QueueSize: cfg.Report.QueueSize}, sinks)
	defer reporter.Close(context.Background())

	m := metrics.New(nil)
	pl := pipeline.New(models, engine, reporter, m)
	srv := server.New(cfg, models, pl, m)

	log.Printf("Starting site layout detection service on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
