package api

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/web"
)

// NewRouter wires the page, the JSON API, health and metrics routes. Metrics
// are served from gatherer when enabled; nil uses the default gatherer.
func NewRouter(h *Handler, srv config.ServerConfig, m config.MetricsConfig, gatherer prometheus.Gatherer) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log), cors.New(corsConfig(srv.CORSOrigins)))
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "diabetes-prediction-form"})
	})
	if m.IsEnabled() {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		path := m.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Pass-through to the prediction endpoint; needs no session.
	r.POST("/api/predict", h.Predict)

	page := r.Group("/", h.WithSession)
	page.GET("/", h.Page)
	page.POST("/", h.SubmitForm)
	page.POST("/dismiss", h.DismissForm)

	// Sessions ride on a cookie, so the form API is same-origin: with
	// AllowAllOrigins browsers do not send credentials cross-origin.
	r.GET("/api/form", h.GetForm)
	api := r.Group("/api/form", h.WithSession)
	api.PUT("/fields/:field", h.UpdateField)
	api.POST("/submit", h.Submit)
	api.POST("/dismiss", h.Dismiss)
	api.POST("/extract", h.Extract)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
