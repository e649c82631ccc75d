package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dromero/barberbot/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrNotFound:     http.StatusNotFound,
	apperrors.ErrBadRequest:   http.StatusBadRequest,
	apperrors.ErrUnauthorized: http.StatusUnauthorized,
	apperrors.ErrForbidden:    http.StatusForbidden,
	apperrors.ErrConflict:     http.StatusConflict,
	apperrors.ErrUnavailable:  http.StatusServiceUnavailable,
	apperrors.ErrInternal:     http.StatusInternalServerError,
}

// RespondWithError maps an application error to its HTTP status. Anything
// that is not an AppError renders as an opaque 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status, known := statusByCode[appErr.Code]
		if !known {
			status = http.StatusInternalServerError
		}
		c.JSON(status, NewErrorResponse(appErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
