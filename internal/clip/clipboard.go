// Package clip reads payloads from and writes feedback to the system
// clipboard, falling back to standard streams when no clipboard exists.
package clip

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Read returns the clipboard contents, or stdin when the clipboard is
// unavailable (headless sessions, CI).
func Read() (string, error) {
	if !clipboard.Unsupported {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text, nil
		}
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write places text on the clipboard. Returns false when the clipboard is
// unavailable; callers fall back to printing.
func Write(text string) bool {
	if clipboard.Unsupported {
		return false
	}
	return clipboard.WriteAll(text) == nil
}
