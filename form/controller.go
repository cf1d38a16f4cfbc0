package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/metrics"
	"github.com/saqibullah/diabetes-prediction-form/predictor"
)

const (
	failedPrediction = "Failed to get prediction."
	somethingWrong   = "Something went wrong."
)

// Predictor classifies one set of measurements.
type Predictor interface {
	Predict(ctx context.Context, req predictor.Request) (predictor.Response, error)
}

// Controller owns the state of one form instance. It is safe for concurrent
// use; overlapping submissions run in parallel and only the latest one may
// change the outcome.
type Controller struct {
	mu    sync.Mutex
	state State

	predictor Predictor
	log       logger.Logger
	rec       metrics.Recorder
}

// NewController creates a controller with all fields empty and the dialog closed.
// A nil logger or recorder is replaced by a no-op.
func NewController(p Predictor, log logger.Logger, rec metrics.Recorder) *Controller {
	if log == nil {
		log = logger.NopLogger{}
	}
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Controller{predictor: p, log: log, rec: rec}
}

func (c *Controller) dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// Update replaces the text of one field.
func (c *Controller) Update(f Field, value string) {
	c.dispatch(FieldChanged{Field: f, Value: value})
}

// Apply replaces the text of several fields.
func (c *Controller) Apply(values map[Field]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range Fields {
		if v, ok := values[f]; ok {
			c.state = Reduce(c.state, FieldChanged{Field: f, Value: v})
		}
	}
}

// Dismiss closes the result dialog, keeping the outcome.
func (c *Controller) Dismiss() {
	c.dispatch(ModalDismissed{})
}

// Submit parses the current fields, sends one prediction request and records
// its result. Failures are turned into notifications and also returned; an
// *InputError means nothing was sent. A result that arrives after a newer
// submission was issued is dropped.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	req, err := ParseRequest(c.state.Values)
	if err != nil {
		var ie *InputError
		desc := somethingWrong
		if errors.As(err, &ie) {
			desc = "Invalid value for " + ie.Field.Key() + "."
		}
		c.state = Reduce(c.state, InputRejected{Notification: errorNotification(desc)})
		c.mu.Unlock()
		c.rec.RecordSubmission(metrics.OutcomeInvalidInput, 0)
		c.log.Infof("submission rejected: %v", err)
		return err
	}
	seq := c.state.Latest + 1
	c.state = Reduce(c.state, SubmitStarted{Seq: seq})
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.predictor.Predict(ctx, req)
	took := time.Since(start)

	var action Action
	var outcome metrics.Outcome
	switch {
	case err == nil:
		action = SubmitSucceeded{Seq: seq, Message: resp.Result}
		outcome = metrics.OutcomeUnfavorable
		if resp.Favorable() {
			outcome = metrics.OutcomeFavorable
		}
	case isStatusError(err):
		action = SubmitFailed{Seq: seq, Notification: errorNotification(failedPrediction)}
		outcome = metrics.OutcomeServerError
	default:
		desc := err.Error()
		if desc == "" {
			desc = somethingWrong
		}
		action = SubmitFailed{Seq: seq, Notification: errorNotification(desc)}
		outcome = metrics.OutcomeTransportError
	}
	c.rec.RecordSubmission(outcome, took)

	c.mu.Lock()
	current := c.state.IsCurrent(seq)
	c.state = Reduce(c.state, action)
	c.mu.Unlock()

	if !current {
		c.rec.RecordStaleResponse()
		c.log.Debugw("discarded stale prediction", map[string]any{"seq": seq, "outcome": string(outcome)})
		return err
	}
	c.log.Debugw("submission finished", map[string]any{
		"seq":     seq,
		"outcome": string(outcome),
		"took_ms": took.Milliseconds(),
	})
	return err
}

func isStatusError(err error) bool {
	var se *predictor.StatusError
	return errors.As(err, &se)
}

// View is a render-ready snapshot of the form.
type View struct {
	Values        map[string]string `json:"values"`
	ModalOpen     bool              `json:"modalOpen"`
	Outcome       Outcome           `json:"outcome"`
	Title         string            `json:"title"`
	Notifications []Notification    `json:"notifications"`
}

// View snapshots the state and drains pending notifications, so each one is
// delivered once.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.state.view()
	c.state.Pending = nil
	return v
}

// EmptyView is the view of a form nobody has touched yet.
func EmptyView() View { return State{}.view() }

func (s State) view() View {
	pending := s.Pending
	if pending == nil {
		pending = []Notification{}
	}
	return View{
		Values:        s.Values.Map(),
		ModalOpen:     s.ModalOpen,
		Outcome:       s.Outcome,
		Title:         s.Outcome.Title(),
		Notifications: pending,
	}
}

// State returns a copy of the current state without draining notifications.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Pending = append([]Notification(nil), c.state.Pending...)
	return s
}
