package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/diabetes-prediction-form/form"
	"github.com/saqibullah/diabetes-prediction-form/logger"
)

// SessionCookie carries the id of the caller's form session.
const SessionCookie = "dpf_session"

const controllerKey = "form.controller"

// WithSession resolves the caller's form controller, starting a new session
// when the cookie is missing or no longer known.
func (h *Handler) WithSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		var id string
		id, ctrl = h.sessions.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	}
	c.Set(controllerKey, ctrl)
	c.Next()
}

// session looks up the caller's controller without starting a session.
func (h *Handler) session(c *gin.Context) (*form.Controller, bool) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return h.sessions.Get(id)
}

func controller(c *gin.Context) *form.Controller {
	return c.MustGet(controllerKey).(*form.Controller)
}

// RequestLogger logs every request once it has been served.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("request completed", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"remote":      c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			log.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, c.Errors.String())
		}
	}
}
