package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/pkg/crypto"
	appErrors "github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/response"
)

var errInvalidCredentials = appErrors.New("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)

// AdminCredentials identify the operator allowed to obtain admin tokens.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// AuthHandler exchanges operator credentials for admin access tokens.
type AuthHandler struct {
	jwt   *iauth.JWTService
	admin AdminCredentials
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(jwt *iauth.JWTService, admin AdminCredentials) (*AuthHandler, error) {
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	return &AuthHandler{jwt: jwt, admin: admin}, nil
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token issues an admin access token for valid credentials.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	usernameOK := subtle.ConstantTimeCompare(
		[]byte(strings.TrimSpace(req.Username)),
		[]byte(strings.TrimSpace(h.admin.Username)),
	) == 1
	passwordOK := crypto.VerifyPassword(h.admin.PasswordHash, req.Password)
	if !usernameOK || !passwordOK {
		response.Error(c, errInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		Role: iauth.RoleAdmin,
		Name: h.admin.Username,
	})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwt.AccessTokenTTL().Seconds()),
	})
}
