package outbox

import (
	"github.com/google/uuid"

	"github.com/sangreguerrer/Netology-Final/pkg/enums"
)

// Message is the wire format the publisher puts on the Redis channel and the
// notification worker reads back.
type Message struct {
	EventType     enums.OutboxEventType     `json:"eventType"`
	AggregateType enums.OutboxAggregateType `json:"aggregateType"`
	AggregateID   uuid.UUID                 `json:"aggregateId"`
	Envelope      PayloadEnvelope           `json:"envelope"`
}
