package broker

import (
	"context"
	"encoding/json"
	"strconv"

	"bakery/internal/outbox"

	"github.com/segmentio/kafka-go"
)

// 同じエンティティのイベントは同じパーティションへ
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// 同期書き込み。失敗はoutbox側でリトライされる
func (p *KafkaPublisher) Publish(ctx context.Context, env outbox.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Topic + ":" + strconv.FormatInt(env.EntityID, 10)),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
