package serverutils

import (
	"strings"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   entity.UserRole
}

// ParseToken verifies an HS256 token and extracts its identity claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, apperror.Auth("Invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.Auth("Invalid claims")
	}

	rawID, _ := mapClaims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperror.Auth("Invalid claims")
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{UserID: userID, Email: email, Role: entity.UserRole(role)}, nil
}

func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return apperror.Auth("Not authorized to access this route")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(authHeader[7:]))
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserID, claims.UserID.String())
		ctx.Locals(LocalEmail, claims.Email)
		ctx.Locals(LocalRole, string(claims.Role))
		return ctx.Next()
	}
}

// UserID returns the authenticated caller set by the JWT middleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals(LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Auth("Not authorized to access this route")
	}
	return id, nil
}

func UserEmail(ctx *fiber.Ctx) string {
	email, _ := ctx.Locals(LocalEmail).(string)
	return email
}

func RequireRole(roles ...entity.UserRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role, _ := ctx.Locals(LocalRole).(string)
		for _, r := range roles {
			if entity.UserRole(role) == r {
				return ctx.Next()
			}
		}
		return apperror.Forbidden("Insufficient role for this action")
	}
}
