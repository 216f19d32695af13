package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ppiankov/curator/internal/model"
)

func testReport() *model.RunReport {
	return &model.RunReport{
		RunID:     "run-1",
		StartedAt: time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC),
		Steps: model.RunSteps{
			Collection: &model.CollectionStep{Total: 12, Sources: 10},
		},
		Errors: []string{"feed x failed"},
	}
}

func TestFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "last_run.json")
	sink := NewFileSink(path)

	if err := sink.Deliver(context.Background(), testReport()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.RunID != "run-1" || got.Steps.Collection.Total != 12 || got.Steps.Analysis != nil {
		t.Errorf("unexpected report: %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the report file, found %d entries", len(entries))
	}
}

func TestFileSink_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run.json")
	sink := NewFileSink(path)

	first := testReport()
	second := testReport()
	second.RunID = "run-2"

	_ = sink.Deliver(context.Background(), first)
	if err := sink.Deliver(context.Background(), second); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	got, _ := Load(path)
	if got.RunID != "run-2" {
		t.Errorf("RunID = %q, want run-2", got.RunID)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

type fakeS3 struct {
	key  string
	body []byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key = *in.Key
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Key(t *testing.T) {
	fake := &fakeS3{}
	sink := &S3Sink{client: fake, bucket: "b", prefix: "curator"}

	if err := sink.Deliver(context.Background(), testReport()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if fake.key != "curator/runs/2025-03-01/run-1.json" {
		t.Errorf("key = %q", fake.key)
	}
	if !bytes.Contains(fake.body, []byte(`"run_id":"run-1"`)) {
		t.Errorf("body = %s", fake.body)
	}
}

type fakeProducer struct {
	sarama.SyncProducer
	sent []*sarama.ProducerMessage
}

func (p *fakeProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	p.sent = append(p.sent, msg)
	return 0, int64(len(p.sent)), nil
}

func TestKafkaSink_Deliver(t *testing.T) {
	producer := &fakeProducer{}
	sink := &KafkaSink{producer: producer, topic: "curator.runs"}

	if err := sink.Deliver(context.Background(), testReport()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(producer.sent) != 1 {
		t.Fatalf("sent %d messages", len(producer.sent))
	}
	msg := producer.sent[0]
	key, _ := msg.Key.Encode()
	if msg.Topic != "curator.runs" || string(key) != "run-1" {
		t.Errorf("topic = %q, key = %q", msg.Topic, key)
	}
}

func TestFromConfig_FileOnly(t *testing.T) {
	sinks, err := FromConfig(context.Background(), model.ReportConfig{Path: filepath.Join(t.TempDir(), "r.json")})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(sinks) != 1 || sinks[0].Name() != "file" {
		t.Errorf("sinks = %v", sinks)
	}
}
