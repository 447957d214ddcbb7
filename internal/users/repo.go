package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
)

// Repository persists accounts, confirmation tokens and partner shops.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Activate(ctx context.Context, userID uuid.UUID) (int64, error)
	CreateConfirmToken(ctx context.Context, token *models.ConfirmEmailToken) error
	FindConfirmToken(ctx context.Context, key string) (*models.ConfirmEmailToken, error)
	DeleteConfirmToken(ctx context.Context, id uuid.UUID) error
	CreateShop(ctx context.Context, shop *models.Shop) error
	FindShopByUserID(ctx context.Context, userID uuid.UUID) (*models.Shop, error)
	SetShopState(ctx context.Context, shopID uuid.UUID, state bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) Activate(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_active = ?", userID, false).
		Update("is_active", true)
	return res.RowsAffected, res.Error
}

func (r *repository) CreateConfirmToken(ctx context.Context, token *models.ConfirmEmailToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repository) FindConfirmToken(ctx context.Context, key string) (*models.ConfirmEmailToken, error) {
	var token models.ConfirmEmailToken
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repository) DeleteConfirmToken(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ConfirmEmailToken{}, "id = ?", id).Error
}

func (r *repository) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *repository) FindShopByUserID(ctx context.Context, userID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) SetShopState(ctx context.Context, shopID uuid.UUID, state bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		Update("state", state).Error
}
