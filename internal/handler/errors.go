package handler

import (
	"errors"
	"net/http"

	"backend/internal/billing"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError translates service layer failures into HTTP status codes:
// validation problems map to 400, broken state preconditions to 409 and
// missing records to 404. Anything else is treated as a bad request, the
// service layer wraps genuine infrastructure failures distinctly.
func respondError(c *gin.Context, err error) {
	switch {
	case billing.IsValidation(err):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, billing.ErrPreconditionFailed):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	}
}

// requestScope pulls the authenticated company and user ids set by the auth
// middleware. Routes behind RequireRole always have both.
func requestScope(c *gin.Context) (companyID, userID string) {
	if v, ok := c.Get("companyID"); ok {
		companyID, _ = v.(string)
	}
	if v, ok := c.Get("userID"); ok {
		userID, _ = v.(string)
	}
	return companyID, userID
}
