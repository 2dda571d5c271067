package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/betbet/exchange/internal/security"
)

const (
	authorizationHeader = "Authorization"
	authorizationScheme = "bearer"
)

// Authenticate verifies the bearer token and stores the caller's
// identity, permissions and KYC level in the request context.
func Authenticate(maker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if header == "" {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], authorizationScheme) {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := maker.VerifyToken(fields[1])
		if err != nil {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if payload.Scope != security.TokenScopeAccess {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", payload.UserID)
		c.Set("permissions", payload.Permissions)
		c.Set("kyc_level", payload.KYCLevel)
		c.Next()
	}
}

func Can(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		permissionsValue, exists := c.Get("permissions")
		if !exists {
			ForbiddenResponse(c, "Access Denied: Permissions not found in context")
			c.Abort()
			return
		}

		permissions, ok := permissionsValue.([]string)
		if !ok {
			ForbiddenResponse(c, "Access Denied: Invalid permissions data in context")
			c.Abort()
			return
		}

		for _, p := range permissions {
			if p == permission {
				c.Next()
				return
			}
		}

		ForbiddenResponse(c, "Access Denied: You do not have the required permission")
		c.Abort()
	}
}

// RequireKYC rejects callers whose verified KYC level is below the
// given threshold.
func RequireKYC(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		kycValue, exists := c.Get("kyc_level")
		if !exists {
			ForbiddenResponse(c, "Access Denied: KYC level not found in context")
			c.Abort()
			return
		}

		kycLevel, ok := kycValue.(int)
		if !ok || kycLevel < level {
			ForbiddenResponse(c, "Access Denied: Account verification level too low")
			c.Abort()
			return
		}

		c.Next()
	}
}
