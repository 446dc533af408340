package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/charlesng35/studentms/internal/models"
	appErrors "github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/response"
	appValidator "github.com/charlesng35/studentms/pkg/validator"
)

func init() {
	appValidator.MustRegister("channel", func(fl validator.FieldLevel) bool {
		_, err := models.ParseChannel(fl.Field().String())
		return err == nil
	}, "{field} must be one of Email, SMS, InApp, Push")
}

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.Struct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return false
	}

	return true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBoolQuery(c *gin.Context, key string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && parsed
}

// parseIDParam reads a positive numeric path parameter, writing a 400 response when it is malformed.
func parseIDParam(c *gin.Context, key string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(key))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(c, appErrors.NewBadRequest(fmt.Sprintf("invalid %s", key)))
		return 0, false
	}
	return uint(id), true
}
