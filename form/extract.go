package form

import (
	"regexp"
	"strings"
)

// Spellings seen in lab reports that the patterns below do not cover.
var normalizer = strings.NewReplacer(
	"BloodPressure", "Blood Pressure",
	"SkinThickness", "Skin Thickness",
	"DiabetesPedigreeFunction", "Diabetes Pedigree Function",
	"DPF", "Diabetes Pedigree Function",
)

var patterns = [numFields]*regexp.Regexp{
	Pregnancies:   regexp.MustCompile(`(?i)Pregnancies\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	Glucose:       regexp.MustCompile(`(?i)Glucose\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	BloodPressure: regexp.MustCompile(`(?i)Blood\s*Pressure\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	SkinThickness: regexp.MustCompile(`(?i)Skin\s*Thickness\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	Insulin:       regexp.MustCompile(`(?i)Insulin\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	BMI:           regexp.MustCompile(`(?i)\bBMI\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
	DPF:           regexp.MustCompile(`(?i)Diabetes\s*Pedigree\s*Function\s*[:=\-]?\s*(\d*\.?\d+)`),
	Age:           regexp.MustCompile(`(?i)\bAge\s*[:=\-]?\s*(\d+(?:\.\d+)?)`),
}

// ExtractFields finds field values in free text such as a pasted lab report.
// Only fields that appear in the text are returned, as the matched number.
// Decimals are kept for every field; a fractional count is rejected on submit.
func ExtractFields(text string) map[Field]string {
	text = normalizer.Replace(strings.TrimSpace(text))
	out := make(map[Field]string)
	if text == "" {
		return out
	}
	for _, f := range Fields {
		if m := patterns[f].FindStringSubmatch(text); len(m) > 1 {
			out[f] = m[1]
		}
	}
	return out
}
