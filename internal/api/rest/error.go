package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ledger-indexer/internal/logger"
)

type errorCode string

// Codes returned in the error envelope
const (
	errCodeBadRequest       errorCode = "bad_request"
	errCodeNotFound         errorCode = "not_found"
	errCodeValidationFailed errorCode = "validation_failed"
	errCodeInternalError    errorCode = "internal_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func respondWithError(c *gin.Context, statusCode int, code errorCode, message, details string) {
	c.JSON(statusCode, errorResponse{
		Error: errorDetail{Code: code, Message: message, Details: details},
	})
}

// respondBadRequest sends a 400 for a malformed path parameter
func respondBadRequest(c *gin.Context, message string, err error) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, err.Error())
}

// respondNotFound sends a 404, details names the missing resource
func respondNotFound(c *gin.Context, message, details string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details)
}

// respondValidationError sends a 400 for rejected query parameters
func respondValidationError(c *gin.Context, err error) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", err.Error())
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message, "")
}
