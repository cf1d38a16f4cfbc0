package predictor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/metrics"
)

// PredictionPath is the route served by the prediction endpoint.
const PredictionPath = "/diabetes_prediction"

// MockServer stands in for the prediction endpoint during local development.
// It validates requests like the real endpoint and answers with a configured
// result and status.
type MockServer struct {
	addr     string
	result   string
	status   int
	log      logger.Logger
	srv      *http.Server
	requests *prometheus.CounterVec
}

// NewMockServer creates a mock server using the default Prometheus registerer.
func NewMockServer(cfg config.MockConfig, log logger.Logger) (*MockServer, error) {
	return NewMockServerWithRegistry(cfg, log, prometheus.DefaultRegisterer)
}

// NewMockServerWithRegistry registers the request counter on reg.
func NewMockServerWithRegistry(cfg config.MockConfig, log logger.Logger, reg prometheus.Registerer) (*MockServer, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	requests, err := metrics.Counter(reg, "mock_prediction_requests_total",
		"Requests served by the mock prediction endpoint", "status")
	if err != nil {
		return nil, err
	}
	return &MockServer{
		addr:     cfg.Address,
		result:   cfg.Result,
		status:   cfg.StatusCode,
		log:      log,
		requests: requests,
	}, nil
}

// Handler returns the gin engine serving the mock routes.
func (s *MockServer) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mock-predictor"})
	})
	r.POST(PredictionPath, s.predict)
	return r
}

func (s *MockServer) predict(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		s.log.Warnf("rejecting prediction request: %v", err)
		s.requests.WithLabelValues(strconv.Itoa(http.StatusUnprocessableEntity)).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	req := in.Request()
	s.log.Debugw("mock prediction", map[string]any{
		"glucose": req.Glucose,
		"bmi":     req.BMI,
		"age":     req.Age,
	})
	s.requests.WithLabelValues(strconv.Itoa(s.status)).Inc()
	if s.status < 200 || s.status > 299 {
		c.JSON(s.status, gin.H{"detail": http.StatusText(s.status)})
		return
	}
	c.JSON(s.status, Response{Result: s.result})
}

// Addr returns the listening address once Start has been called.
func (s *MockServer) Addr() string { return s.addr }

// Start serves until ctx is cancelled.
func (s *MockServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown mock server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("mock prediction endpoint listening on %s%s", s.addr, PredictionPath)
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
