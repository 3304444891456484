package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Brawl345/forumbot/llm"
	"github.com/Brawl345/forumbot/model"
	"github.com/Brawl345/forumbot/plugin"
	"github.com/Brawl345/forumbot/utils"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

type (
	APIError struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}

	ErrorEnvelope struct {
		Error APIError `json:"error"`
	}

	DataEnvelope struct {
		Data any `json:"data"`
	}
)

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Data: payload})
}

// respondError maps known errors to a status code. Everything else is logged with
// a GUID that is also shown to the caller.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	msg := err.Error()

	switch {
	case errors.Is(err, plugin.ErrBadPayload):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, plugin.ErrUnknown):
		status, code = http.StatusNotFound, "unknown_hook"
	case errors.Is(err, ErrPluginNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ErrAlreadyEnabled), errors.Is(err, ErrAlreadyOff):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, model.ErrNotAllowed):
		status, code = http.StatusForbidden, "not_allowed"
	case errors.Is(err, model.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, llm.ErrNoAPIKey):
		status, code = http.StatusServiceUnavailable, "no_api_key"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	default:
		guid := xid.New().String()
		log.Err(err).
			Str("guid", guid).
			Str("path", c.Request.URL.Path).
			Send()
		msg = fmt.Sprintf("An error occurred.%s", utils.EmbedGUID(guid))
	}

	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}
