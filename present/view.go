// Package present turns a resolved order into the groups and attachment slots
// shown on the confirmation page.
package present

import "strings"

// Fallback is shown for any field the sheet leaves empty.
const Fallback = "N/A"

// AttachmentKind says how an attachment slot is rendered.
type AttachmentKind string

const (
	KindImage AttachmentKind = "image"
	KindLink  AttachmentKind = "link"
)

// Field is one labelled value of a group.
type Field struct {
	Label  string
	Value  string
	Absent bool
}

// Group is a titled set of fields rendered as one column.
type Group struct {
	Title  string
	Fields []Field
}

// Attachment is a present design slot.
type Attachment struct {
	Slot    int
	Caption string
	Ref     string
	Kind    AttachmentKind
}

// LinkText is the label used when the attachment is rendered as a link.
func (a Attachment) LinkText() string {
	return "Ver " + a.Caption
}

// View is the rendered form of an order.
type View struct {
	Number      string
	General     Group
	Specs       Group
	Attachments []Attachment
}

var absentValues = map[string]struct{}{
	"":      {},
	"nan":   {},
	"none":  {},
	"null":  {},
	"nil":   {},
	"<nil>": {},
}

// IsAbsent reports whether a cell value means "no value": empty text or one of
// the textual spellings of missing that spreadsheet exports produce.
func IsAbsent(v string) bool {
	_, ok := absentValues[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

func field(label, value string) Field {
	if IsAbsent(value) {
		return Field{Label: label, Value: Fallback, Absent: true}
	}
	return Field{Label: label, Value: value}
}
