package middleware

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorHandler turns the last error attached to the gin context into a JSON
// response. AppErrors keep their type and status.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err
		log := logger.GetLogger().Named("http")

		response := ErrorResponse{RequestID: GetRequestID(c)}
		status := http.StatusInternalServerError

		var appErr *errors.AppError
		switch {
		case stderrors.As(err, &appErr):
			status = appErr.GetHTTPStatus()
			response.Type = string(appErr.Type)
			response.Message = appErr.Message
			// Only include details for validation, not-found and upstream errors or in debug mode
			if appErr.Detail != "" && (gin.IsDebugging() ||
				appErr.Type == errors.ValidationError ||
				appErr.Type == errors.NotFoundError ||
				appErr.Type == errors.APIError) {
				response.Details = appErr.Detail
			}
		case last.Type == gin.ErrorTypeBind:
			status = http.StatusBadRequest
			response.Type = string(errors.ValidationError)
			response.Message = "Failed to bind request"
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
		case last.Type == gin.ErrorTypePublic:
			status = http.StatusBadRequest
			response.Type = string(errors.ValidationError)
			response.Message = err.Error()
		default:
			response.Type = string(errors.ServerError)
			response.Message = "Internal Server Error"
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
		}
		response.Code = strconv.Itoa(status)

		fields := []interface{}{
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"status", status,
			"requestID", response.RequestID,
			"error", err,
		}
		if status >= http.StatusInternalServerError {
			log.Errorw("Request failed", fields...)
		} else {
			log.Warnw("Request failed", fields...)
		}

		c.JSON(status, response)
	}
}
