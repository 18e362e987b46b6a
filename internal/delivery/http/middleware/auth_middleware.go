package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"hospital-scheduler/pkg/jwt"
	"hospital-scheduler/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	StaffIDKey    contextKey = "staff_id"
	StaffEmailKey contextKey = "staff_email"
	RoleKey       contextKey = "role"
	TokenIDKey    contextKey = "token_id"
)

// AccessTokenKey is the Redis allow-list entry for one issued access token
func AccessTokenKey(staffID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", staffID.String(), tokenID)
}

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		// Check if token exists in Redis (not revoked)
		exists, err := m.redisClient.Exists(r.Context(), AccessTokenKey(claims.StaffID, claims.TokenID)).Result()
		if err != nil {
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if exists == 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		ctx := WithStaff(r.Context(), claims.StaffID, claims.Email, claims.Role, claims.TokenID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithStaff stores the authenticated staff identity in ctx
func WithStaff(ctx context.Context, staffID uuid.UUID, email, role, tokenID string) context.Context {
	ctx = context.WithValue(ctx, StaffIDKey, staffID)
	ctx = context.WithValue(ctx, StaffEmailKey, email)
	ctx = context.WithValue(ctx, RoleKey, role)
	ctx = context.WithValue(ctx, TokenIDKey, tokenID)
	return ctx
}

// GetStaffIDFromContext extracts staff ID from context
func GetStaffIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	staffID, ok := ctx.Value(StaffIDKey).(uuid.UUID)
	return staffID, ok
}

// GetStaffIDPtrFromContext is GetStaffIDFromContext shaped for audit records,
// where anonymous actions carry a nil staff ID.
func GetStaffIDPtrFromContext(ctx context.Context) (*uuid.UUID, bool) {
	staffID, ok := GetStaffIDFromContext(ctx)
	if !ok {
		return nil, false
	}
	return &staffID, true
}

// GetStaffEmailFromContext extracts staff email from context
func GetStaffEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(StaffEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// GetRoleFromContext extracts role from context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
