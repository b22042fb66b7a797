package handlers

import (
	"errors"
	"net/http"

	"github.com/fatflowers/mealkit/pkg/response"
	"github.com/fatflowers/mealkit/pkg/types"

	"github.com/gin-gonic/gin"
)

// respondErr maps the service failure taxonomy onto envelope codes. The
// HTTP status stays 200 with the error carried in the envelope, matching
// the rest of the API surface.
func respondErr(c *gin.Context, err error) {
	code := response.APIResponseCodeError
	switch {
	case errors.Is(err, types.ErrValidation):
		code = response.APIResponseCodeBadRequest
	case errors.Is(err, types.ErrNotFound):
		code = response.APIResponseCodeNotFound
	case errors.Is(err, types.ErrInvalidTransition), errors.Is(err, types.ErrBusinessRuleViolation):
		code = response.APIResponseCodeConflict
	case errors.Is(err, types.ErrNoActiveMenuCycle), errors.Is(err, types.ErrMultipleActiveMenuCycles):
		code = response.APIResponseCodeConflict
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
}
