package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
)

type stubSink struct {
	messages []Message
	failFor  map[uuid.UUID]error
}

func (s *stubSink) Publish(_ context.Context, _ string, payload any) error {
	raw, ok := payload.([]byte)
	if !ok {
		return errors.New("expected raw bytes")
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	if err, fail := s.failFor[msg.AggregateID]; fail {
		return err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func queueEvent(t *testing.T, db *gorm.DB, aggregateID uuid.UUID) models.OutboxEvent {
	t.Helper()
	envelope, err := json.Marshal(PayloadEnvelope{
		Version: 1,
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`{"orderId":"` + aggregateID.String() + `"}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	row := models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       envelope,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("queue event: %v", err)
	}
	return row
}

func newPublisher(t *testing.T, db *gorm.DB, sink ChannelPublisher) *Publisher {
	t.Helper()
	pub, err := NewPublisher(NewRepository(db), sink, PublisherOptions{
		Channel:     "market:events",
		BatchSize:   10,
		MaxAttempts: 3,
	}, nil)
	if err != nil {
		t.Fatalf("building publisher: %v", err)
	}
	return pub
}

func TestRunOncePublishesAndMarks(t *testing.T) {
	db := newTestDB(t)
	sink := &stubSink{}
	pub := newPublisher(t, db, sink)

	row := queueEvent(t, db, uuid.New())

	published, failed, err := pub.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published != 1 || failed != 0 {
		t.Fatalf("expected 1 published, got %d/%d", published, failed)
	}
	if len(sink.messages) != 1 || sink.messages[0].EventType != enums.EventOrderPlaced {
		t.Fatalf("unexpected messages: %+v", sink.messages)
	}

	var stored models.OutboxEvent
	if err := db.First(&stored, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.PublishedAt == nil {
		t.Fatal("expected published_at set")
	}

	// a second pass finds nothing to do
	published, failed, err = pub.RunOnce(context.Background())
	if err != nil || published != 0 || failed != 0 {
		t.Fatalf("expected empty pass, got %d/%d err=%v", published, failed, err)
	}
}

func TestRunOnceFailureDoesNotBlockSiblings(t *testing.T) {
	db := newTestDB(t)
	badAggregate := uuid.New()
	sink := &stubSink{failFor: map[uuid.UUID]error{badAggregate: errors.New("redis down")}}
	pub := newPublisher(t, db, sink)

	bad := queueEvent(t, db, badAggregate)
	queueEvent(t, db, uuid.New())

	published, failed, err := pub.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if published != 1 || failed != 1 {
		t.Fatalf("expected 1 published and 1 failed, got %d/%d", published, failed)
	}

	var stored models.OutboxEvent
	if err := db.First(&stored, "id = ?", bad.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.PublishedAt != nil {
		t.Fatal("expected failing row unpublished")
	}
	if stored.AttemptCount != 1 {
		t.Fatalf("expected attempt count 1, got %d", stored.AttemptCount)
	}
	if stored.LastError == nil {
		t.Fatal("expected last error recorded")
	}
}

func TestRunOnceSkipsRowsAtMaxAttempts(t *testing.T) {
	db := newTestDB(t)
	badAggregate := uuid.New()
	sink := &stubSink{failFor: map[uuid.UUID]error{badAggregate: errors.New("still down")}}
	pub := newPublisher(t, db, sink)

	queueEvent(t, db, badAggregate)

	for i := 0; i < 3; i++ {
		if _, failed, _ := pub.RunOnce(context.Background()); failed != 1 {
			t.Fatalf("pass %d: expected 1 failure, got %d", i, failed)
		}
	}

	// attempts exhausted, row is parked
	published, failed, err := pub.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published != 0 || failed != 0 {
		t.Fatalf("expected parked row skipped, got %d/%d", published, failed)
	}
}
