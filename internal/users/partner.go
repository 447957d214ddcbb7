package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
)

// PartnerService manages the shop profile of a partner account.
type PartnerService interface {
	Shop(ctx context.Context, userID uuid.UUID) (*models.Shop, error)
	SetState(ctx context.Context, userID uuid.UUID, accepting bool) (*models.Shop, error)
}

type partnerService struct {
	repo Repository
}

// NewPartnerService builds the partner shop service.
func NewPartnerService(repo Repository) (PartnerService, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &partnerService{repo: repo}, nil
}

func (s *partnerService) Shop(ctx context.Context, userID uuid.UUID) (*models.Shop, error) {
	shop, err := s.repo.FindShopByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading shop: %w", err)
	}
	if shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
	}
	return shop, nil
}

// SetState toggles whether the shop accepts new orders. Closed shops keep
// their listings but disappear from the public catalog.
func (s *partnerService) SetState(ctx context.Context, userID uuid.UUID, accepting bool) (*models.Shop, error) {
	shop, err := s.Shop(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetShopState(ctx, shop.ID, accepting); err != nil {
		return nil, fmt.Errorf("updating shop state: %w", err)
	}
	shop.State = accepting
	return shop, nil
}
