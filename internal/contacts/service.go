package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

// Input carries the writable contact fields.
type Input struct {
	City      string
	Street    string
	House     string
	Structure string
	Building  string
	Apartment string
	Phone     string
}

// Service manages a user's delivery contacts. Every operation is scoped to
// the owner; a contact id belonging to someone else behaves like a missing
// one.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Contact, error)
	Update(ctx context.Context, userID, contactID uuid.UUID, input Input) (*models.Contact, error)
	Remove(ctx context.Context, userID uuid.UUID, rawIDs string) (int64, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the contacts service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &service{db: db}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Contact, error) {
	var rows []models.Contact
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Contact, error) {
	contact := models.Contact{
		UserID:    userID,
		City:      input.City,
		Street:    input.Street,
		House:     input.House,
		Structure: input.Structure,
		Building:  input.Building,
		Apartment: input.Apartment,
		Phone:     input.Phone,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	return &contact, nil
}

func (s *service) Update(ctx context.Context, userID, contactID uuid.UUID, input Input) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading contact: %w", err)
	}

	contact.City = input.City
	contact.Street = input.Street
	contact.House = input.House
	contact.Structure = input.Structure
	contact.Building = input.Building
	contact.Apartment = input.Apartment
	contact.Phone = input.Phone
	if err := s.db.WithContext(ctx).Save(&contact).Error; err != nil {
		return nil, fmt.Errorf("updating contact: %w", err)
	}
	return &contact, nil
}

// Remove deletes the caller's contacts named in the comma separated id list.
// Unparseable tokens and foreign ids are ignored.
func (s *service) Remove(ctx context.Context, userID uuid.UUID, rawIDs string) (int64, error) {
	ids := make([]uuid.UUID, 0)
	for _, part := range strings.Split(rawIDs, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Contact{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting contacts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
