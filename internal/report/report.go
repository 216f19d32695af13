package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/curator/internal/model"
)

// Sink receives the report of every finished run
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r *model.RunReport) error
}

// FileSink overwrites one JSON file with the latest report
type FileSink struct {
	path string
}

// NewFileSink creates a FileSink
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Name() string { return "file" }

// Deliver writes the report atomically through a temp file in the same directory
func (s *FileSink) Deliver(ctx context.Context, r *model.RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads a report written by FileSink
func Load(path string) (*model.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r model.RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}

// FromConfig builds every sink the configuration enables
func FromConfig(ctx context.Context, cfg model.ReportConfig) ([]Sink, error) {
	var sinks []Sink
	if cfg.Path != "" {
		sinks = append(sinks, NewFileSink(cfg.Path))
	}
	if cfg.S3.Bucket != "" {
		s3Sink, err := NewS3Sink(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		sinks = append(sinks, s3Sink)
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		kafkaSink, err := NewKafkaSink(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		sinks = append(sinks, kafkaSink)
	}
	return sinks, nil
}
