package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/http/validation"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
)

var errUnexpected = errors.New("Unexpected error, check server logs")

// respondServiceError renders an *apierr.Error as is. Anything else is an
// unclassified failure and is reported without detail.
func respondServiceError(c *gin.Context, fallbackCode string, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	_ = c.Error(err)
	response.RespondError(c, http.StatusInternalServerError, fallbackCode, errUnexpected)
}

func respondBindError(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(validation.Message(err)))
}
