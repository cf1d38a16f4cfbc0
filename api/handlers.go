package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/diabetes-prediction-form/form"
	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/predictor"
	"github.com/saqibullah/diabetes-prediction-form/session"
	"github.com/saqibullah/diabetes-prediction-form/web"
)

// Handler serves the form page and its JSON API.
type Handler struct {
	sessions  *session.Store
	predictor form.Predictor
	log       logger.Logger
}

func NewHandler(sessions *session.Store, p form.Predictor, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{sessions: sessions, predictor: p, log: log}
}

type fieldView struct {
	Key       string
	InputType string
	Value     string
}

type pageData struct {
	Fields []fieldView
	View   form.View
}

// Page renders the form, the result dialog when open, and pending toasts.
func (h *Handler) Page(c *gin.Context) {
	v := controller(c).View()
	fields := make([]fieldView, 0, len(form.Fields))
	for _, f := range form.Fields {
		fields = append(fields, fieldView{Key: f.Key(), InputType: f.InputType(), Value: v.Values[f.Key()]})
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.PageTemplate, pageData{Fields: fields, View: v})
}

// SubmitForm takes the posted fields as the new form state, submits it and
// redirects back to the page, which shows the dialog or the failure toast.
func (h *Handler) SubmitForm(c *gin.Context) {
	ctrl := controller(c)
	values := make(map[form.Field]string, len(form.Fields))
	for _, f := range form.Fields {
		if v, ok := c.GetPostForm(f.Key()); ok {
			values[f] = v
		}
	}
	ctrl.Apply(values)
	if err := ctrl.Submit(context.WithoutCancel(c.Request.Context())); err != nil {
		h.log.Debugf("form submission failed: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// DismissForm closes the dialog and redirects back to the page.
func (h *Handler) DismissForm(c *gin.Context) {
	controller(c).Dismiss()
	c.Redirect(http.StatusSeeOther, "/")
}

// GetForm returns the JSON view of the caller's form. A caller without a
// session sees an empty form and no session is started for it.
func (h *Handler) GetForm(c *gin.Context) {
	if ctrl, ok := h.session(c); ok {
		c.JSON(http.StatusOK, ctrl.View())
		return
	}
	c.JSON(http.StatusOK, form.EmptyView())
}

type fieldUpdate struct {
	Value *string `json:"value" binding:"required"`
}

// UpdateField replaces one field, as typed by the user.
func (h *Handler) UpdateField(c *gin.Context) {
	f, err := form.ParseField(c.Param("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req fieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	controller(c).Update(f, *req.Value)
	c.Status(http.StatusNoContent)
}

// Submit submits the caller's form. Failures are part of the returned view as
// notifications, so the status is 200 whenever the submission was handled.
func (h *Handler) Submit(c *gin.Context) {
	ctrl := controller(c)
	if err := ctrl.Submit(context.WithoutCancel(c.Request.Context())); err != nil {
		h.log.Debugf("api submission failed: %v", err)
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// Dismiss closes the caller's result dialog.
func (h *Handler) Dismiss(c *gin.Context) {
	ctrl := controller(c)
	ctrl.Dismiss()
	c.JSON(http.StatusOK, ctrl.View())
}

type extractRequest struct {
	Text string `json:"text" binding:"required"`
}

// Extract reads field values out of report text and applies them to the form.
func (h *Handler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("binding extract request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found := form.ExtractFields(req.Text)
	extracted := make(map[string]string, len(found))
	for f, v := range found {
		extracted[f.Key()] = v
	}
	h.log.Debugw("extracted fields", map[string]any{"count": len(extracted)})

	ctrl := controller(c)
	ctrl.Apply(found)
	c.JSON(http.StatusOK, gin.H{"extracted": extracted, "form": ctrl.View()})
}

// Predict forwards a complete set of measurements to the prediction endpoint
// and returns its classification, without touching any form.
func (h *Handler) Predict(c *gin.Context) {
	var in predictor.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Warnf("binding predict request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.predictor.Predict(c.Request.Context(), in.Request())
	if err != nil {
		var se *predictor.StatusError
		if errors.As(err, &se) {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Prediction endpoint error: status %d", se.StatusCode)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to connect to prediction endpoint: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": resp.Result, "favorable": resp.Favorable()})
}
