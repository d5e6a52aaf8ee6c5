package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/service"
	"go.uber.org/zap"
)

const msgInternal = "Internal server error"

// statusTable maps error kinds to the status codes of one endpoint.
// Kinds missing from the table are answered as internal errors.
type statusTable map[service.ErrorKind]int

// bind decodes the JSON body into req. A malformed body is answered with
// the endpoint's validation status.
func (h *AuthHandler) bind(c *gin.Context, req any, table statusTable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		status, ok := table[service.KindValidation]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.Response{
			Success: false,
			Message: "Invalid request body",
		})
		return false
	}
	return true
}

func (h *AuthHandler) respondError(c *gin.Context, err error, table statusTable) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if status, ok := table[svcErr.Kind]; ok {
			c.JSON(status, dto.Response{
				Success: false,
				Message: svcErr.Message,
			})
			return
		}
	}

	h.logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.Response{
		Success: false,
		Message: msgInternal,
	})
}
