package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/response"
)

const (
	CtxClaimsKey      = "authClaims"
	CtxRoleKey        = "authRole"
	CtxRecipientIDKey = "recipientID"
)

// Auth enforces JWT authentication using the supplied JWT service.
// With allowQueryToken set, a token may also arrive as ?access_token= for websocket upgrades.
func Auth(jwt *iauth.JWTService, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQueryToken {
			token = strings.TrimSpace(c.Query("access_token"))
		}
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxRecipientIDKey, claims.RecipientID)

		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated role is one of roles.
func RequireRole(roles ...iauth.Role) gin.HandlerFunc {
	allowed := make(map[iauth.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, permitted := allowed[role]; !permitted {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the validated claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok && claims != nil
}

// RoleFrom returns the authenticated role.
func RoleFrom(c *gin.Context) (iauth.Role, bool) {
	v, ok := c.Get(CtxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(iauth.Role)
	return role, ok
}

// RecipientIDFrom returns the recipient the caller acts as. Zero means none.
func RecipientIDFrom(c *gin.Context) uint {
	v, ok := c.Get(CtxRecipientIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func bearerToken(header string) string {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
