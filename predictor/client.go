package predictor

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/logger"
)

// Client calls the remote diabetes prediction endpoint.
type Client struct {
	http     *resty.Client
	endpoint string
	log      logger.Logger
}

// NewClient creates a client for cfg.Endpoint. Retries stay disabled: a failed
// prediction is reported to the user, who may resubmit.
func NewClient(cfg config.PredictorConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	c := resty.New().
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if t := cfg.Timeout(); t > 0 {
		c.SetTimeout(t)
	}
	return &Client{http: c, endpoint: cfg.Endpoint, log: log}
}

// Endpoint returns the URL predictions are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Predict posts req and returns the decoded reply. A non-2xx reply yields a
// *StatusError; transport and decoding failures are returned wrapped.
func (c *Client) Predict(ctx context.Context, req Request) (Response, error) {
	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.endpoint)
	if err != nil {
		c.log.Errorf("prediction request failed: %v", err)
		return Response{}, fmt.Errorf("prediction request: %w", err)
	}
	if !resp.IsSuccess() {
		c.log.Warnf("prediction endpoint returned status %d, body: %s", resp.StatusCode(), resp.String())
		return Response{}, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	c.log.Debugw("prediction received", map[string]any{
		"status": resp.StatusCode(),
		"result": out.Result,
		"took":   resp.Time().String(),
	})
	return out, nil
}
