package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox/payloads"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Shop{}, &models.Notification{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func buildMessage(t *testing.T, eventType enums.OutboxEventType, data any) outbox.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.Message{
		EventType: eventType,
		Envelope:  outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: raw},
	}
}

func TestHandleOrderPlacedStoresNotification(t *testing.T) {
	db := newTestDB(t)
	m, err := NewMaterializer(db, NewRepository(db), nil)
	if err != nil {
		t.Fatalf("building materializer: %v", err)
	}

	userID := uuid.New()
	msg := buildMessage(t, enums.EventOrderPlaced, payloads.OrderPlacedEvent{OrderID: uuid.New(), UserID: userID})
	if err := m.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := NewRepository(db).ListForUser(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("listing notifications: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != enums.NotificationOrderPlaced {
		t.Fatalf("unexpected notifications: %+v", rows)
	}
}

func TestHandleLowStockNotifiesShopOwner(t *testing.T) {
	db := newTestDB(t)
	m, err := NewMaterializer(db, NewRepository(db), nil)
	if err != nil {
		t.Fatalf("building materializer: %v", err)
	}

	owner := models.User{Email: "owner@shop.test", PasswordHash: "x", FirstName: "a", LastName: "b", Type: "shop", IsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	shop := models.Shop{UserID: owner.ID, Name: "shop", State: true}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}

	msg := buildMessage(t, enums.EventLowStock, payloads.LowStockEvent{
		ProductInfoID: uuid.New(),
		ShopID:        shop.ID,
		Remaining:     1,
	})
	if err := m.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := NewRepository(db).ListForUser(context.Background(), owner.ID, 10)
	if err != nil {
		t.Fatalf("listing notifications: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != enums.NotificationLowStock {
		t.Fatalf("unexpected notifications: %+v", rows)
	}
}

func TestHandleLowStockMissingShopIsNoop(t *testing.T) {
	db := newTestDB(t)
	m, err := NewMaterializer(db, NewRepository(db), nil)
	if err != nil {
		t.Fatalf("building materializer: %v", err)
	}

	msg := buildMessage(t, enums.EventLowStock, payloads.LowStockEvent{
		ProductInfoID: uuid.New(),
		ShopID:        uuid.New(),
		Remaining:     0,
	})
	if err := m.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notifications, got %d", count)
	}
}

func TestHandleUnknownEventIsIgnored(t *testing.T) {
	db := newTestDB(t)
	m, err := NewMaterializer(db, NewRepository(db), nil)
	if err != nil {
		t.Fatalf("building materializer: %v", err)
	}

	msg := buildMessage(t, enums.OutboxEventType("order.exploded"), map[string]string{"x": "y"})
	if err := m.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("expected unknown type ignored, got %v", err)
	}
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	notification := models.Notification{UserID: userID, Type: enums.NotificationOrderPlaced, Title: "t", Message: "m"}
	if err := repo.Create(context.Background(), &notification); err != nil {
		t.Fatalf("create: %v", err)
	}

	affected, err := repo.MarkRead(context.Background(), uuid.New(), notification.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected foreign mark-read to be a no-op, got %d", affected)
	}

	affected, err = repo.MarkRead(context.Background(), userID, notification.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row marked, got %d", affected)
	}
}
