package present

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes a plain-text rendering of the view, used by the lookup command.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Pedido %s\n", v.Number)
	for _, g := range []Group{v.General, v.Specs} {
		fmt.Fprintf(&b, "\n%s\n", g.Title)
		for _, f := range g.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Label, f.Value)
		}
	}

	b.WriteString("\nDiseños\n")
	if len(v.Attachments) == 0 {
		b.WriteString("  (sin diseños adjuntos)\n")
	}
	for _, a := range v.Attachments {
		fmt.Fprintf(&b, "  %s [%s] %s\n", a.Caption, a.Kind, a.Ref)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
