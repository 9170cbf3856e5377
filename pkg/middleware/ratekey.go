package middleware

import (
	"strings"

	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// callerKey holds the user id read from a valid token ahead of the sign-in
// gate. It only selects a rate-limit bucket and grants nothing.
const callerKey = "rateCaller"

// IdentifyCaller records the user id of a validly signed token so global
// middlewares running before RequireSignIn can tell callers apart.
// Missing or invalid tokens are ignored; the sign-in gate rejects them later.
func IdentifyCaller(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		if raw != "" {
			if claims, err := tokens.ParseAccessToken(cfg, raw); err == nil {
				if uid, err := claims.ObjectID(); err == nil {
					c.Set(callerKey, uid)
				}
			}
		}
		c.Next()
	}
}

// rateKey prefers the signed-in user id so users behind one NAT do not share
// a bucket; anonymous requests are keyed by client IP.
func rateKey(c *gin.Context, prefix string) string {
	if uid, ok := CurrentUserID(c); ok {
		return prefix + "user:" + uid.Hex()
	}
	if v, ok := c.Get(callerKey); ok {
		if uid, ok := v.(primitive.ObjectID); ok && !uid.IsZero() {
			return prefix + "user:" + uid.Hex()
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return prefix + "ip:" + ip
}
