package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by RequireSignIn.
const (
	ClaimsKey = "claims"
	UserIDKey = "userID"
	TokenKey  = "token"
)

var (
	errMissingToken = errors.New("missing Authorization header")
	errRevokedToken = errors.New("token has been revoked")
)

// Revocations reports whether a token was revoked before its expiry.
type Revocations interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// UserLookup loads a user by id, returning (nil, nil) when unknown.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireSignIn verifies the JWT in the Authorization header. The header
// holds the raw token; a "Bearer " prefix is accepted too.
func RequireSignIn(cfg *config.Config, revoked Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		if raw == "" {
			abortSignIn(c, errMissingToken)
			return
		}
		claims, err := tokens.ParseAccessToken(cfg, raw)
		if err != nil {
			abortSignIn(c, err)
			return
		}
		uid, err := claims.ObjectID()
		if err != nil {
			abortSignIn(c, tokens.ErrInvalidToken)
			return
		}
		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), raw)
			if err != nil {
				abortSignIn(c, err)
				return
			}
			if isRevoked {
				abortSignIn(c, errRevokedToken)
				return
			}
		}
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, uid)
		c.Set(TokenKey, raw)
		c.Next()
	}
}

func abortSignIn(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Error in requireSignIn middleware",
		"error":   err.Error(),
	})
}

// IsAdmin allows the request only when the signed-in user has the admin role.
// It must run after RequireSignIn.
func IsAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing user from request"})
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error in admin middleware", "error": err.Error()})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "UnAuthorized Access"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the id of the signed-in user.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

// CurrentClaims returns the verified token claims and the raw token.
func CurrentClaims(c *gin.Context) (*tokens.Claims, string, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, "", false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, c.GetString(TokenKey), ok
}
