package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/ppiankov/curator/internal/model"
)

// KafkaSink publishes each report keyed by run id
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaSink connects a synchronous producer to the brokers
func NewKafkaSink(cfg model.KafkaConfig) (*KafkaSink, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return &KafkaSink{producer: producer, topic: cfg.Topic}, nil
}

func (s *KafkaSink) Name() string { return "kafka" }

// Deliver sends the report and waits for the broker acknowledgement
func (s *KafkaSink) Deliver(ctx context.Context, r *model.RunReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(r.RunID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

// Close shuts down the producer
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
