// Package oauth serves the browser-facing half of the calendar link flow:
// the redirect target Google calls with the authorization code.
package oauth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dromero/barberbot/pkg/logger"
)

// CallbackService exchanges the authorization code and stores credentials.
type CallbackService interface {
	HandleCallback(ctx context.Context, state, code string) error
}

type Handler struct {
	svc    CallbackService
	logger *logger.Logger
}

func NewHandler(svc CallbackService, log *logger.Logger) *Handler {
	return &Handler{svc: svc, logger: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/auth/callback", h.Callback)
}

const successPage = `<!DOCTYPE html>
<html>
	<body style="font-family: sans-serif; text-align: center; padding: 50px;">
		<h1 style="color: green;">✅ Connected!</h1>
		<p>Your Google Calendar is now linked to the bot.</p>
		<p>You can close this window and return to Telegram.</p>
	</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
	<body style="font-family: sans-serif; text-align: center; padding: 50px;">
		<h1 style="color: red;">❌ Connection failed</h1>
		<p>There was a problem saving your credentials. Please try again.</p>
	</body>
</html>`

func (h *Handler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(failurePage))
		return
	}

	if err := h.svc.HandleCallback(c.Request.Context(), state, code); err != nil {
		h.logger.Error(err, "oauth callback failed")
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(failurePage))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(successPage))
}
