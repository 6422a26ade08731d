package outbox

import (
	"encoding/json"
	"time"

	"bakery/internal/domain/model"
)

const producerName = "bakery-api"

// ブローカーとWebSocketクライアントに流す形
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"` // topic.OPERATION
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Topic      string          `json:"topic"`
	Operation  string          `json:"operation"`
	EntityID   int64           `json:"entity_id"`
	UserID     int64           `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
}

func EnvelopeFrom(ev model.OutboxEvent) Envelope {
	payload := json.RawMessage(ev.Payload)
	if !json.Valid(payload) {
		payload = json.RawMessage("null")
	}
	return Envelope{
		EventID:    ev.EventID,
		EventType:  string(ev.Topic) + "." + string(ev.Operation),
		OccurredAt: ev.CreatedAt,
		Producer:   producerName,
		Topic:      string(ev.Topic),
		Operation:  string(ev.Operation),
		EntityID:   ev.EntityID,
		UserID:     ev.UserID,
		Payload:    payload,
	}
}
