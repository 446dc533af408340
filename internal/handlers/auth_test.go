package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/pkg/crypto"
)

func TestAuthHandlerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "secret", Issuer: "test-suite", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	hash, err := crypto.HashPassword("correct horse")
	require.NoError(t, err)

	handler, err := NewAuthHandler(jwtSvc, AdminCredentials{Username: "registrar", PasswordHash: hash})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/token", handler.Token)

	post := func(body map[string]string) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(map[string]string{"username": "registrar", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := decodeData[tokenResponse](t, w)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, 3600, token.ExpiresIn)

	claims, err := jwtSvc.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, iauth.RoleAdmin, claims.Role)
	require.Zero(t, claims.RecipientID)

	require.Equal(t, http.StatusUnauthorized, post(map[string]string{"username": "registrar", "password": "wrong"}).Code)
	require.Equal(t, http.StatusUnauthorized, post(map[string]string{"username": "intruder", "password": "correct horse"}).Code)
	require.Equal(t, http.StatusBadRequest, post(map[string]string{"username": "registrar"}).Code)
}
