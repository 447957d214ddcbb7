package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox/payloads"
)

// Materializer turns published domain events into notification rows. Mail
// delivery is out of process; the worker logs what would be sent so the dev
// loop does not need a mail provider.
type Materializer struct {
	db   *gorm.DB
	repo Repository
	logg *logger.Logger
}

// NewMaterializer builds the event consumer.
func NewMaterializer(db *gorm.DB, repo Repository, logg *logger.Logger) (*Materializer, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &Materializer{db: db, repo: repo, logg: logg}, nil
}

// HandleMessage consumes one published event. Unknown event types are
// ignored so old workers survive new producers.
func (m *Materializer) HandleMessage(ctx context.Context, msg outbox.Message) error {
	switch msg.EventType {
	case enums.EventOrderPlaced:
		return m.handleOrderPlaced(ctx, msg)
	case enums.EventLowStock:
		return m.handleLowStock(ctx, msg)
	case enums.EventUserRegistered:
		return m.handleUserRegistered(ctx, msg)
	default:
		if m.logg != nil {
			logCtx := m.logg.WithField(ctx, "event_type", string(msg.EventType))
			m.logg.Warn(logCtx, "skipping unknown event type")
		}
		return nil
	}
}

func (m *Materializer) handleOrderPlaced(ctx context.Context, msg outbox.Message) error {
	var payload payloads.OrderPlacedEvent
	if err := json.Unmarshal(msg.Envelope.Data, &payload); err != nil {
		return fmt.Errorf("decoding order placed payload: %w", err)
	}

	notification := models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationOrderPlaced,
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order %s has been accepted and is being processed.", payload.OrderID),
	}
	if err := m.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	m.logEmail(ctx, payload.UserID, "order status update")
	return nil
}

func (m *Materializer) handleLowStock(ctx context.Context, msg outbox.Message) error {
	var payload payloads.LowStockEvent
	if err := json.Unmarshal(msg.Envelope.Data, &payload); err != nil {
		return fmt.Errorf("decoding low stock payload: %w", err)
	}

	ownerID, err := m.shopOwner(ctx, payload.ShopID)
	if err != nil {
		return err
	}
	if ownerID == uuid.Nil {
		// shop vanished between debit and delivery; nothing to notify
		return nil
	}

	notification := models.Notification{
		UserID:  ownerID,
		Type:    enums.NotificationLowStock,
		Title:   "Low stock",
		Message: fmt.Sprintf("Listing %s is down to %d units.", payload.ProductInfoID, payload.Remaining),
	}
	if err := m.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	return nil
}

func (m *Materializer) handleUserRegistered(ctx context.Context, msg outbox.Message) error {
	var payload payloads.UserRegisteredEvent
	if err := json.Unmarshal(msg.Envelope.Data, &payload); err != nil {
		return fmt.Errorf("decoding user registered payload: %w", err)
	}

	notification := models.Notification{
		UserID:  payload.UserID,
		Type:    enums.NotificationConfirmEmail,
		Title:   "Confirm your email",
		Message: "A confirmation key has been sent to " + payload.Email + ".",
	}
	if err := m.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	m.logEmail(ctx, payload.UserID, "email confirmation")
	return nil
}

func (m *Materializer) shopOwner(ctx context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	var shop models.Shop
	err := m.db.WithContext(ctx).Select("id", "user_id").Where("id = ?", shopID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving shop owner: %w", err)
	}
	return shop.UserID, nil
}

func (m *Materializer) logEmail(ctx context.Context, userID uuid.UUID, kind string) {
	if m.logg == nil {
		return
	}
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"user_id": userID.String(),
		"kind":    kind,
	})
	m.logg.Info(logCtx, "outbound email queued")
}
