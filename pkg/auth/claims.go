package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sangreguerrer/Netology-Final/pkg/enums"
)

// Claims is the access token payload.
type Claims struct {
	UserID uuid.UUID      `json:"uid"`
	Type   enums.UserType `json:"typ"`
	jwt.RegisteredClaims
}
