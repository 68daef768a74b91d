package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

var validate = validator.New()

// bindJSON decodes and validates a request body. The returned error is
// already shaped for the response envelope.
func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed: "+err.Error())
	}
	return nil
}

// queryInt parses an integer query parameter, falling back on bad input.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
