package predictor

import (
	"fmt"
	"strings"
)

const (
	// NotDiabetic is the favorable classification returned by the endpoint.
	NotDiabetic = "The person is not Diabetic"
	// Diabetic is the unfavorable classification returned by the endpoint.
	Diabetic = "The person is Diabetic"
)

// Request is the body posted to the prediction endpoint.
type Request struct {
	Pregnancies              int     `json:"Pregnancies"`
	Glucose                  int     `json:"Glucose"`
	BloodPressure            int     `json:"BloodPressure"`
	SkinThickness            int     `json:"SkinThickness"`
	Insulin                  int     `json:"Insulin"`
	BMI                      float64 `json:"BMI"`
	DiabetesPedigreeFunction float64 `json:"DiabetesPedigreeFunction"`
	Age                      int     `json:"Age"`
}

// Input is Request as received from a caller, where every field must be present.
// Zero is a valid value, hence the pointers.
type Input struct {
	Pregnancies              *int     `json:"Pregnancies" binding:"required"`
	Glucose                  *int     `json:"Glucose" binding:"required"`
	BloodPressure            *int     `json:"BloodPressure" binding:"required"`
	SkinThickness            *int     `json:"SkinThickness" binding:"required"`
	Insulin                  *int     `json:"Insulin" binding:"required"`
	BMI                      *float64 `json:"BMI" binding:"required"`
	DiabetesPedigreeFunction *float64 `json:"DiabetesPedigreeFunction" binding:"required"`
	Age                      *int     `json:"Age" binding:"required"`
}

// Request dereferences the input. Call it only after binding succeeded.
func (in Input) Request() Request {
	return Request{
		Pregnancies:              *in.Pregnancies,
		Glucose:                  *in.Glucose,
		BloodPressure:            *in.BloodPressure,
		SkinThickness:            *in.SkinThickness,
		Insulin:                  *in.Insulin,
		BMI:                      *in.BMI,
		DiabetesPedigreeFunction: *in.DiabetesPedigreeFunction,
		Age:                      *in.Age,
	}
}

// Response is the endpoint's reply.
type Response struct {
	Result string `json:"result"`
}

// Favorable reports whether the result is the not-diabetic classification.
func (r Response) Favorable() bool { return r.Result == NotDiabetic }

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("prediction endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("prediction endpoint returned status %d: %s", e.StatusCode, body)
}
