// Package confirm implements the confirm / request-changes decision form.
package confirm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrValidation signals that a required decision field was left empty.
	ErrValidation = errors.New("confirm: complete all fields")
	// ErrUnknownChoice signals a choice value outside the form options.
	ErrUnknownChoice = errors.New("confirm: unknown choice")
)

// ValidationError names the empty fields of a rejected submission.
type ValidationError struct {
	Choice  Choice
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("confirm: %s: missing %s", e.Choice, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Flow validates submissions and produces acknowledgments.
type Flow struct {
	newReference func() string
}

// NewFlow creates a Flow whose acknowledgments carry a random reference.
func NewFlow() *Flow {
	return &Flow{newReference: uuid.NewString}
}

// Start returns the state shown before any submit for the given choice.
func (f *Flow) Start(choice Choice) State {
	switch choice {
	case ChoiceConfirm:
		return StateConfirm
	case ChoiceRequestChanges:
		return StateRequestChanges
	default:
		return StateInitial
	}
}

// Submit validates a submission. On success the outcome is terminal; on
// failure it stays in the collecting state and the error is a *ValidationError.
func (f *Flow) Submit(sub Submission) (Outcome, error) {
	switch sub.Choice {
	case ChoiceConfirm:
		d := Confirm{
			Name:  strings.TrimSpace(sub.Name),
			Email: strings.TrimSpace(sub.Email),
		}
		if missing := missingFields("nombre", d.Name, "email", d.Email); len(missing) > 0 {
			return Outcome{State: StateConfirm}, &ValidationError{Choice: sub.Choice, Missing: missing}
		}
		return Outcome{
			State:     StateConfirmed,
			Decision:  d,
			Reference: f.newReference(),
			Title:     "¡Confirmación exitosa!",
			Detail:    "Nos contactaremos para proceder con producción",
		}, nil

	case ChoiceRequestChanges:
		d := RequestChanges{
			Description: strings.TrimSpace(sub.Description),
			Contact:     strings.TrimSpace(sub.Contact),
		}
		if missing := missingFields("cambios", d.Description, "contacto", d.Contact); len(missing) > 0 {
			return Outcome{State: StateRequestChanges}, &ValidationError{Choice: sub.Choice, Missing: missing}
		}
		return Outcome{
			State:     StateChangesRequested,
			Decision:  d,
			Reference: f.newReference(),
			Title:     "Cambios enviados",
			Detail:    "Ajustaremos según sus indicaciones",
		}, nil

	default:
		return Outcome{State: StateInitial}, fmt.Errorf("%w: %q", ErrUnknownChoice, sub.Choice)
	}
}

func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
