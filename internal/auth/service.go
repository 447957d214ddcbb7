package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangreguerrer/Netology-Final/internal/users"
	pkgauth "github.com/sangreguerrer/Netology-Final/pkg/auth"
	"github.com/sangreguerrer/Netology-Final/pkg/config"
	"github.com/sangreguerrer/Netology-Final/pkg/db"
	"github.com/sangreguerrer/Netology-Final/pkg/db/models"
	"github.com/sangreguerrer/Netology-Final/pkg/enums"
	pkgerrors "github.com/sangreguerrer/Netology-Final/pkg/errors"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox/payloads"
	"github.com/sangreguerrer/Netology-Final/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RegisterInput carries a new account request. ShopName is required for shop
// accounts and ignored for buyers.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Type      enums.UserType
	ShopName  string
}

// Service handles registration, email confirmation and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Confirm(ctx context.Context, email, key string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type service struct {
	repo    users.Repository
	tx      txRunner
	outbox  outboxEmitter
	jwtCfg  config.JWTConfig
	passCfg config.PasswordConfig
	logg    *logger.Logger
}

// NewService builds the auth service.
func NewService(repo users.Repository, tx txRunner, emitter outboxEmitter, jwtCfg config.JWTConfig, passCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  emitter,
		jwtCfg:  jwtCfg,
		passCfg: passCfg,
		logg:    logg,
	}, nil
}

// Register creates an inactive account plus its confirmation token and
// queues the confirmation event, all in one transaction.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	userType := input.Type
	if userType == "" {
		userType = enums.UserTypeBuyer
	}
	if !userType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user type")
	}
	if userType == enums.UserTypeShop && strings.TrimSpace(input.ShopName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required for shop accounts")
	}

	hash, err := security.HashPassword(s.passCfg, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Type:         userType,
		IsActive:     false,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return fmt.Errorf("creating user: %w", err)
		}

		if userType == enums.UserTypeShop {
			shop := models.Shop{UserID: user.ID, Name: strings.TrimSpace(input.ShopName), State: true}
			if err := repo.CreateShop(ctx, &shop); err != nil {
				return fmt.Errorf("creating shop: %w", err)
			}
		}

		token := models.ConfirmEmailToken{UserID: user.ID, Key: uuid.NewString()}
		if err := repo.CreateConfirmToken(ctx, &token); err != nil {
			return fmt.Errorf("creating confirm token: %w", err)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: payloads.UserRegisteredEvent{
				UserID:     user.ID,
				Email:      email,
				ConfirmKey: token.Key,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Info(logCtx, "user registered")
	}
	return &user, nil
}

// Confirm activates the account matching the email and confirmation key.
// The token is single use.
func (s *service) Confirm(ctx context.Context, email, key string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		token, err := repo.FindConfirmToken(ctx, key)
		if err != nil {
			return fmt.Errorf("loading confirm token: %w", err)
		}
		if token == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "confirmation token not found")
		}

		user, err := repo.FindByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		if user == nil || !strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "confirmation token not found")
		}

		if _, err := repo.Activate(ctx, user.ID); err != nil {
			return fmt.Errorf("activating user: %w", err)
		}
		if err := repo.DeleteConfirmToken(ctx, token.ID); err != nil {
			return fmt.Errorf("deleting confirm token: %w", err)
		}
		return nil
	})
}

// Login verifies credentials and issues an access token. Inactive accounts
// and bad passwords get the same unauthorized answer.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", fmt.Errorf("loading user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.IssueAccessToken(s.jwtCfg, user.ID, user.Type)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}
