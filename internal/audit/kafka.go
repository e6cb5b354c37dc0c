package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrSinkOpen is returned while the Kafka breaker is open.
var ErrSinkOpen = errors.New("audit sink unavailable")

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes events as JSON records keyed by application id, so
// every event of one application lands on the same partition.
type KafkaSink struct {
	producer producer
	topic    string
	breaker  *breaker
	close    func()
}

// NewKafkaSink connects a franz-go client to brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	sink := newKafkaSink(client, topic)
	sink.close = client.Close
	return sink, nil
}

func newKafkaSink(p producer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic, breaker: newBreaker(5, 30*time.Second)}
}

func (k *KafkaSink) Append(ctx context.Context, event Event) error {
	if !k.breaker.allow() {
		return ErrSinkOpen
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.ApplicationID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		k.breaker.failure()
		return fmt.Errorf("produce audit event: %w", err)
	}
	k.breaker.success()
	return nil
}

// Close releases the underlying client.
func (k *KafkaSink) Close() {
	if k.close != nil {
		k.close()
	}
}
