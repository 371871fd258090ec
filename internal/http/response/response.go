// Package response renders the API's JSON envelope: {data, error, meta}.
// Successful responses carry a null error; failures carry a null data.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	NextCursor string `json:"nextCursor,omitempty"`
}

type Envelope struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
	Meta  *Meta     `json:"meta,omitempty"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

func RespondOKWithMeta(c *gin.Context, data any, meta Meta) {
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: &meta})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{Error: &APIError{Code: code, Message: msg}})
}

// RespondFromError maps an apierr.Error to its status and code; anything else
// becomes a 500 with the given fallback code.
func RespondFromError(c *gin.Context, err error, fallbackCode string) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}
	RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}
