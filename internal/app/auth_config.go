package app

import (
	"strings"

	"github.com/charlesng35/studentms/internal/auth"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         strings.TrimSpace(c.JWT.Issuer),
		AccessTokenTTL: ttl,
	}
}

// AdminLoginEnabled reports whether operators may exchange credentials for an admin token.
func (c AuthConfig) AdminLoginEnabled() bool {
	return strings.TrimSpace(c.Admin.Username) != "" && strings.TrimSpace(c.Admin.PasswordHash) != ""
}
