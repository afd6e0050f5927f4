package apply

import (
	"strings"
)

// FormatAIRejection builds the feedback message placed on the clipboard for
// the user to paste back to the AI.
func FormatAIRejection(missing, errors []string) string {
	var b strings.Builder

	b.WriteString("Your payload was REJECTED by SlopChop. Fix the issues and resend the COMPLETE payload.\n\n")

	if len(missing) > 0 {
		b.WriteString("MISSING FILES (declared in MANIFEST but no FILE block provided):\n")
		for _, path := range missing {
			b.WriteString("  - " + path + "\n")
		}
		b.WriteString("\n")
	}

	if len(errors) > 0 {
		b.WriteString("CONTENT ERRORS:\n")
		for _, err := range errors {
			b.WriteString("  - " + err + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("  - Every non-DELETE manifest entry needs a matching " + Sigil + " FILE " + Sigil + " block.\n")
	b.WriteString("  - Send complete files. No truncation markers, no '...' elisions.\n")
	b.WriteString("  - No markdown code fences. The " + Sigil + " markers are the fences.\n")

	return b.String()
}
