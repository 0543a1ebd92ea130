package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps err onto its taxonomy status. Internal errors never leak
// their text.
func RespondError(c *gin.Context, err error) {
	code := apierr.CodeOf(err)
	if code == "" {
		code = apierr.CodeInternal
	}
	msg := apierr.MessageOf(err)
	if msg == "" || code == apierr.CodeInternal {
		msg = "internal error"
	}
	c.JSON(code.HTTPStatus(), ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(code),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
