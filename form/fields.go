package form

import "fmt"

// Field identifies one of the eight measurements on the form.
type Field int

const (
	Pregnancies Field = iota
	Glucose
	BloodPressure
	SkinThickness
	Insulin
	BMI
	DPF
	Age

	numFields
)

// Fields lists every field in display order.
var Fields = [numFields]Field{Pregnancies, Glucose, BloodPressure, SkinThickness, Insulin, BMI, DPF, Age}

var keys = [numFields]string{
	Pregnancies:   "pregnancies",
	Glucose:       "glucose",
	BloodPressure: "bloodPressure",
	SkinThickness: "skinThickness",
	Insulin:       "insulin",
	BMI:           "bmi",
	DPF:           "dpf",
	Age:           "age",
}

// Key is the form input name of the field.
func (f Field) Key() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return keys[f]
}

func (f Field) String() string { return f.Key() }

func (f Field) Valid() bool { return f >= 0 && f < numFields }

// Numeric reports whether the field is a floating-point value, rendered as a
// number widget. The other fields are integers typed into text inputs.
func (f Field) Numeric() bool { return f == BMI || f == DPF }

// InputType is the HTML input type of the field.
func (f Field) InputType() string {
	if f.Numeric() {
		return "number"
	}
	return "text"
}

// ParseField resolves an input name to its Field.
func ParseField(key string) (Field, error) {
	for i, k := range keys {
		if k == key {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", key)
}

// Values holds the raw text of every field, indexed by Field.
type Values [numFields]string

// Get returns the raw text of f.
func (v Values) Get(f Field) string {
	if !f.Valid() {
		return ""
	}
	return v[f]
}

// Map returns the values keyed by input name.
func (v Values) Map() map[string]string {
	m := make(map[string]string, numFields)
	for _, f := range Fields {
		m[f.Key()] = v[f]
	}
	return m
}
