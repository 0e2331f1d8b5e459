package httperr

import (
	"plogo-server/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithKind translates a tagged error into its response: the status from
// the kind hint, the message from the outermost tag. Raw upstream payloads
// and stack traces never reach the caller.
func AbortWithKind(c *gin.Context, err error) {
	status := errs.HTTPHint(err)
	msg := errs.UserMessage(err)
	if msg == "" {
		msg = "Internal server error"
	}
	AbortWithError(c, status, err, msg, nil)
}
