package form

import "github.com/saqibullah/diabetes-prediction-form/predictor"

const (
	favorableTitle   = "No Diabetes Detected 🎉"
	unfavorableTitle = "Diabetes Detected 😟"

	// VariantDestructive marks error notifications.
	VariantDestructive = "destructive"
)

// Outcome is the last prediction shown in the result dialog.
type Outcome struct {
	Message   string `json:"message"`
	Favorable bool   `json:"favorable"`
}

// Title is the dialog heading for the outcome.
func (o Outcome) Title() string {
	if o.Favorable {
		return favorableTitle
	}
	return unfavorableTitle
}

func outcomeOf(message string) Outcome {
	return Outcome{Message: message, Favorable: message == predictor.NotDiabetic}
}

// Notification is a transient message, delivered once.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

func errorNotification(description string) Notification {
	return Notification{Title: "Error", Description: description, Variant: VariantDestructive}
}

// State is everything one form instance owns.
type State struct {
	Values    Values
	ModalOpen bool
	Outcome   Outcome
	// Pending holds notifications not yet shown.
	Pending []Notification
	// Latest is the sequence number of the most recent submission.
	Latest uint64
}

// Action is a state transition applied by Reduce.
type Action interface{ action() }

// FieldChanged replaces the text of one field.
type FieldChanged struct {
	Field Field
	Value string
}

// SubmitStarted records a newly issued submission.
type SubmitStarted struct{ Seq uint64 }

// SubmitSucceeded carries the endpoint's result for submission Seq.
type SubmitSucceeded struct {
	Seq     uint64
	Message string
}

// SubmitFailed carries the notification for a failed submission Seq.
type SubmitFailed struct {
	Seq          uint64
	Notification Notification
}

// InputRejected reports a submission refused before any request was sent.
type InputRejected struct{ Notification Notification }

// ModalDismissed closes the result dialog.
type ModalDismissed struct{}

func (FieldChanged) action()    {}
func (SubmitStarted) action()   {}
func (SubmitSucceeded) action() {}
func (SubmitFailed) action()    {}
func (InputRejected) action()   {}
func (ModalDismissed) action()  {}

// Reduce returns the state after applying a. It never mutates s. Results and
// failures of any submission other than the latest are dropped.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FieldChanged:
		if a.Field.Valid() {
			s.Values[a.Field] = a.Value
		}
	case SubmitStarted:
		if a.Seq > s.Latest {
			s.Latest = a.Seq
		}
	case SubmitSucceeded:
		if a.Seq != s.Latest {
			return s
		}
		s.Outcome = outcomeOf(a.Message)
		s.ModalOpen = true
	case SubmitFailed:
		if a.Seq != s.Latest {
			return s
		}
		s.Pending = notify(s.Pending, a.Notification)
	case InputRejected:
		s.Pending = notify(s.Pending, a.Notification)
	case ModalDismissed:
		s.ModalOpen = false
	}
	return s
}

func notify(pending []Notification, n Notification) []Notification {
	out := make([]Notification, len(pending), len(pending)+1)
	copy(out, pending)
	return append(out, n)
}

// IsCurrent reports whether seq is still the latest submission.
func (s State) IsCurrent(seq uint64) bool { return seq == s.Latest }
