package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/saqibullah/diabetes-prediction-form/api"
	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/form"
	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/metrics"
	"github.com/saqibullah/diabetes-prediction-form/predictor"
	"github.com/saqibullah/diabetes-prediction-form/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction form",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop, cfg, err := setup()
		if err != nil {
			return err
		}
		defer stop()
		return serve(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	},
}

func serve(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer) error {
	log := logger.New("server")
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var rec metrics.Recorder = metrics.NopRecorder{}
	if cfg.Metrics.IsEnabled() {
		prom, err := metrics.NewPromRecorderWithRegistry(reg)
		if err != nil {
			return err
		}
		rec = prom
	}

	client := predictor.NewClient(cfg.Predictor, logger.New("predictor"))
	formLog := logger.New("form")
	store := session.NewStore(func() *form.Controller {
		return form.NewController(client, formLog, rec)
	}, cfg.Server.SessionIdle(), logger.New("session"), rec)

	router, err := api.NewRouter(api.NewHandler(store, client, logger.New("api")), cfg.Server, cfg.Metrics, gatherer)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go store.Run(ctx, cfg.Server.SweepInterval())
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown server: %v", err)
		}
	}()

	log.Infof("form listening on %s, predicting via %s", ln.Addr(), client.Endpoint())
	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		log.Infof("server closed")
		return nil
	}
	return err
}
