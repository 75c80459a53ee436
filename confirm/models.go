package confirm

// Choice is the customer's answer to "¿La información es correcta?".
type Choice string

const (
	ChoiceConfirm        Choice = "confirmar"
	ChoiceRequestChanges Choice = "cambios"
)

// ParseChoice maps a form value to a Choice. An empty value selects Confirm,
// the first option of the form.
func ParseChoice(s string) (Choice, bool) {
	switch Choice(s) {
	case "", ChoiceConfirm:
		return ChoiceConfirm, true
	case ChoiceRequestChanges:
		return ChoiceRequestChanges, true
	default:
		return "", false
	}
}

// State is a step of the confirmation form.
type State string

const (
	StateInitial          State = "initial"
	StateConfirm          State = "confirm"
	StateRequestChanges   State = "request_changes"
	StateConfirmed        State = "confirmed"
	StateChangesRequested State = "changes_requested"
)

// Terminal reports whether the state is an acknowledgment.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateChangesRequested
}

// Decision is a validated customer decision. It is never persisted.
type Decision interface {
	Choice() Choice
}

// Confirm is the decision to send the order to production.
type Confirm struct {
	Name  string
	Email string
}

// Choice implements Decision.
func (Confirm) Choice() Choice { return ChoiceConfirm }

// RequestChanges is the decision to ask for changes before production.
type RequestChanges struct {
	Description string
	Contact     string
}

// Choice implements Decision.
func (RequestChanges) Choice() Choice { return ChoiceRequestChanges }

// Submission carries the raw form fields of one submit.
type Submission struct {
	Choice      Choice
	Name        string
	Email       string
	Description string
	Contact     string
}

// Outcome is the result of a submit: either a terminal acknowledgment with the
// decision, or the collecting state the customer stays in.
type Outcome struct {
	State     State
	Decision  Decision
	Reference string
	Title     string
	Detail    string
}
