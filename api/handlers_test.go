package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/form"
	"github.com/saqibullah/diabetes-prediction-form/metrics"
	"github.com/saqibullah/diabetes-prediction-form/predictor"
	"github.com/saqibullah/diabetes-prediction-form/session"
)

func init() { gin.SetMode(gin.TestMode) }

// endpoint is a scriptable prediction endpoint.
type endpoint struct {
	mu     sync.Mutex
	status int
	body   string
	delay  time.Duration
	calls  []map[string]any
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var got map[string]any
	_ = json.NewDecoder(r.Body).Decode(&got)
	e.mu.Lock()
	e.calls = append(e.calls, got)
	status, body, delay := e.status, e.body, e.delay
	e.mu.Unlock()
	time.Sleep(delay)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (e *endpoint) set(status int, body string) {
	e.mu.Lock()
	e.status, e.body = status, body
	e.mu.Unlock()
}

func (e *endpoint) slow(d time.Duration) {
	e.mu.Lock()
	e.delay = d
	e.mu.Unlock()
}

func (e *endpoint) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

type fixture struct {
	ep       *endpoint
	epSrv    *httptest.Server
	app      *httptest.Server
	client   *http.Client
	sessions *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ep := &endpoint{status: http.StatusOK, body: `{"result": "The person is not Diabetic"}`}
	epSrv := httptest.NewServer(ep)
	t.Cleanup(epSrv.Close)

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorderWithRegistry(reg)
	require.NoError(t, err)
	p := predictor.NewClient(config.PredictorConfig{Endpoint: epSrv.URL + predictor.PredictionPath, TimeoutSeconds: 2}, nil)
	store := session.NewStore(func() *form.Controller { return form.NewController(p, nil, rec) }, 0, nil, rec)

	router, err := NewRouter(NewHandler(store, p, nil), config.ServerConfig{CORSOrigins: []string{"*"}}, config.MetricsConfig{}, reg)
	require.NoError(t, err)
	app := httptest.NewServer(router)
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{ep: ep, epSrv: epSrv, app: app, client: &http.Client{Jar: jar}, sessions: store}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.app.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (f *fixture) view(t *testing.T, method, path, body string) form.View {
	t.Helper()
	resp, raw := f.do(t, method, path, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)
	var v form.View
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func (f *fixture) fill(t *testing.T) {
	t.Helper()
	values := map[string]string{
		"pregnancies": "6", "glucose": "148", "bloodPressure": "72", "skinThickness": "35",
		"insulin": "0", "bmi": "33.6", "dpf": "0.627", "age": "50",
	}
	for k, v := range values {
		resp, raw := f.do(t, http.MethodPut, "/api/form/fields/"+k, `{"value": "`+v+`"}`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode, raw)
	}
}

func TestPageRendersEmptyForm(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, fld := range form.Fields {
		assert.Contains(t, body, `name="`+fld.Key()+`"`)
		assert.Contains(t, body, `placeholder="Enter `+fld.Key()+`"`)
	}
	assert.Contains(t, body, `name="bmi" type="number"`)
	assert.Contains(t, body, `name="glucose" type="text"`)
	assert.NotContains(t, body, "<dialog")
	assert.Equal(t, 1, f.sessions.Len())

	// the cookie keeps the same session
	f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, 1, f.sessions.Len())
}

func TestFieldUpdateIsolation(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	before := f.view(t, http.MethodGet, "/api/form", "")

	resp, _ := f.do(t, http.MethodPut, "/api/form/fields/insulin", `{"value": "94"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	after := f.view(t, http.MethodGet, "/api/form", "")

	for k, v := range before.Values {
		if k == "insulin" {
			assert.Equal(t, "94", after.Values[k])
			continue
		}
		assert.Equal(t, v, after.Values[k], k)
	}
}

func TestFieldUpdateErrors(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodPut, "/api/form/fields/cholesterol", `{"value": "1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPut, "/api/form/fields/glucose", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitFavorable(t *testing.T) {
	f := newFixture(t)
	f.fill(t)

	v := f.view(t, http.MethodPost, "/api/form/submit", "")
	assert.True(t, v.ModalOpen)
	assert.True(t, v.Outcome.Favorable)
	assert.Equal(t, "The person is not Diabetic", v.Outcome.Message)
	assert.Equal(t, "No Diabetes Detected 🎉", v.Title)

	require.Equal(t, 1, f.ep.count())
	assert.Equal(t, map[string]any{
		"Pregnancies": 6.0, "Glucose": 148.0, "BloodPressure": 72.0, "SkinThickness": 35.0,
		"Insulin": 0.0, "BMI": 33.6, "DiabetesPedigreeFunction": 0.627, "Age": 50.0,
	}, f.ep.calls[0])
}

func TestSubmitUnfavorable(t *testing.T) {
	f := newFixture(t)
	f.ep.set(http.StatusOK, `{"result": "The person is Diabetic"}`)
	f.fill(t)

	v := f.view(t, http.MethodPost, "/api/form/submit", "")
	assert.True(t, v.ModalOpen)
	assert.False(t, v.Outcome.Favorable)
	assert.Equal(t, "Diabetes Detected 😟", v.Title)
}

func TestSubmitEndpointFailure(t *testing.T) {
	f := newFixture(t)
	f.ep.set(http.StatusInternalServerError, `{"detail": "boom"}`)
	f.fill(t)

	v := f.view(t, http.MethodPost, "/api/form/submit", "")
	assert.False(t, v.ModalOpen)
	require.Len(t, v.Notifications, 1)
	assert.Equal(t, "Failed to get prediction.", v.Notifications[0].Description)
}

func TestSubmitEndpointUnreachable(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.epSrv.Close()

	v := f.view(t, http.MethodPost, "/api/form/submit", "")
	assert.False(t, v.ModalOpen)
	require.Len(t, v.Notifications, 1)
	assert.Contains(t, v.Notifications[0].Description, "connection refused")
}

func TestDismissKeepsOutcome(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.view(t, http.MethodPost, "/api/form/submit", "")

	v := f.view(t, http.MethodPost, "/api/form/dismiss", "")
	assert.False(t, v.ModalOpen)
	assert.Equal(t, "The person is not Diabetic", v.Outcome.Message)
	assert.True(t, v.Outcome.Favorable)
}

func TestHTMLFormFlow(t *testing.T) {
	f := newFixture(t)
	f.ep.set(http.StatusOK, `{"result": "The person is Diabetic"}`)

	posted := url.Values{
		"pregnancies": {"1"}, "glucose": {"85"}, "bloodPressure": {"66"}, "skinThickness": {"29"},
		"insulin": {"0"}, "bmi": {"26.6"}, "dpf": {"0.351"}, "age": {"31"},
	}
	resp, err := f.client.PostForm(f.app.URL+"/", posted)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<dialog open>")
	assert.Contains(t, string(body), "Diabetes Detected")
	assert.Contains(t, string(body), "The person is Diabetic")
	assert.Contains(t, string(body), `value="26.6"`)

	resp, err = f.client.PostForm(f.app.URL+"/dismiss", url.Values{})
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NotContains(t, string(body), "<dialog")
}

func TestHTMLFormShowsToastOnce(t *testing.T) {
	f := newFixture(t)
	f.ep.set(http.StatusBadGateway, "")

	posted := url.Values{
		"pregnancies": {"1"}, "glucose": {"85"}, "bloodPressure": {"66"}, "skinThickness": {"29"},
		"insulin": {"0"}, "bmi": {"26.6"}, "dpf": {"0.351"}, "age": {"31"},
	}
	resp, err := f.client.PostForm(f.app.URL+"/", posted)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Failed to get prediction.")
	assert.NotContains(t, string(body), "<dialog")

	_, again := f.do(t, http.MethodGet, "/", "")
	assert.NotContains(t, again, "Failed to get prediction.")
}

func TestInvalidInputIsNotSent(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.do(t, http.MethodPut, "/api/form/fields/age", `{"value": "old"}`)

	v := f.view(t, http.MethodPost, "/api/form/submit", "")
	assert.False(t, v.ModalOpen)
	require.Len(t, v.Notifications, 1)
	assert.Equal(t, "Invalid value for age.", v.Notifications[0].Description)
	assert.Zero(t, f.ep.count())
}

func TestExtract(t *testing.T) {
	f := newFixture(t)
	resp, raw := f.do(t, http.MethodPost, "/api/form/extract", `{"text": "Glucose: 140\nBMI = 31.2\nAge 44"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)

	var out struct {
		Extracted map[string]string `json:"extracted"`
		Form      form.View         `json:"form"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, map[string]string{"glucose": "140", "bmi": "31.2", "age": "44"}, out.Extracted)
	assert.Equal(t, "140", out.Form.Values["glucose"])
	assert.Equal(t, "", out.Form.Values["insulin"])

	resp, _ = f.do(t, http.MethodPost, "/api/form/extract", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictPassThrough(t *testing.T) {
	f := newFixture(t)
	body := `{"Pregnancies": 0, "Glucose": 137, "BloodPressure": 40, "SkinThickness": 35,
		"Insulin": 168, "BMI": 43.1, "DiabetesPedigreeFunction": 2.288, "Age": 33}`

	resp, raw := f.do(t, http.MethodPost, "/api/predict", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)
	assert.JSONEq(t, `{"result": "The person is not Diabetic", "favorable": true}`, raw)

	resp, _ = f.do(t, http.MethodPost, "/api/predict", `{"Glucose": 137}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.ep.set(http.StatusServiceUnavailable, "")
	resp, raw = f.do(t, http.MethodPost, "/api/predict", body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, raw, "status 503")
	assert.Zero(t, f.sessions.Len())
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"ok"`)

	f.fill(t)
	f.view(t, http.MethodPost, "/api/form/submit", "")
	resp, body = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `prediction_submissions_total{outcome="favorable"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.app.URL+"/api/predict", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSubmitOutlivesCallerDisconnect(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.ep.slow(300 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.app.URL+"/api/form/submit", nil)
	require.NoError(t, err)
	_, err = f.client.Do(req)
	require.Error(t, err)

	var (
		v     form.View
		notes []form.Notification
	)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v = f.view(t, http.MethodGet, "/api/form", "")
		notes = append(notes, v.Notifications...)
		if v.ModalOpen {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, v.ModalOpen, "prediction result never arrived")
	assert.Equal(t, "The person is not Diabetic", v.Outcome.Message)
	assert.True(t, v.Outcome.Favorable)
	assert.Empty(t, notes)
	assert.Equal(t, 1, f.ep.count())
}

func TestGetFormWithoutSessionStartsNone(t *testing.T) {
	f := newFixture(t)
	v := f.view(t, http.MethodGet, "/api/form", "")
	assert.Len(t, v.Values, len(form.Fields))
	for k, val := range v.Values {
		assert.Empty(t, val, k)
	}
	assert.False(t, v.ModalOpen)
	assert.NotNil(t, v.Notifications)
	assert.Zero(t, f.sessions.Len())

	// the first write starts the session, later reads see it
	resp, _ := f.do(t, http.MethodPut, "/api/form/fields/glucose", `{"value": "148"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	v = f.view(t, http.MethodGet, "/api/form", "")
	assert.Equal(t, "148", v.Values["glucose"])
	assert.Equal(t, 1, f.sessions.Len())
}
