package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/saqibullah/diabetes-prediction-form/predictor"
)

// InputError reports a field whose text is not a number of the expected kind.
type InputError struct {
	Field Field
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid value for %s: %q", e.Field, e.Value)
}

// ParseRequest converts the raw field text into the endpoint request.
// Integer fields must be base-10 integers and float fields finite numbers;
// surrounding whitespace is ignored. The first offending field is reported.
func ParseRequest(v Values) (predictor.Request, error) {
	var (
		ints   [numFields]int
		floats [numFields]float64
	)
	for _, f := range Fields {
		s := strings.TrimSpace(v[f])
		if f.Numeric() {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
				return predictor.Request{}, &InputError{Field: f, Value: v[f]}
			}
			floats[f] = x
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return predictor.Request{}, &InputError{Field: f, Value: v[f]}
		}
		ints[f] = n
	}
	return predictor.Request{
		Pregnancies:              ints[Pregnancies],
		Glucose:                  ints[Glucose],
		BloodPressure:            ints[BloodPressure],
		SkinThickness:            ints[SkinThickness],
		Insulin:                  ints[Insulin],
		BMI:                      floats[BMI],
		DiabetesPedigreeFunction: floats[DPF],
		Age:                      ints[Age],
	}, nil
}
