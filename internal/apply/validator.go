package apply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/junovhs/slopchop/internal/analyzer"
	"github.com/junovhs/slopchop/pkg/models"
)

// Backticks are spelled with escapes so this file survives its own
// markdown-fence validation when applied through SlopChop.
var markdownPatterns = []string{"\x60\x60\x60", "~~~"}

// truncationMarkers are the lazy elisions AI output falls back on.
var truncationMarkers = []string{
	"// ...",
	"/* ... */",
	"// ... existing code ...",
	"// ... rest of file ...",
	"# ...",
	"<!-- ... -->",
	"rest of the file",
	"rest of file",
	"remaining code unchanged",
}

// sensitivePaths are never writable through a payload. Matched against the
// lowercased path.
var sensitivePaths = []string{
	".git", ".svn", ".hg",
	".env", ".bashrc", ".zshrc", ".profile",
	"id_rsa", "id_ed25519", "credentials", "secrets",
	".ssh", ".aws", ".kube",
	".slopchop_apply_backup",
}

var driveLetterRe = regexp.MustCompile(`^[A-Za-z]:`)

// ValidationResult carries the two error classes separately: security
// errors fail fast, content errors accumulate.
type ValidationResult struct {
	SecurityErrors []string
	ContentErrors  []string
	Missing        []string
}

// OK reports whether the payload passed all sweeps.
func (r *ValidationResult) OK() bool {
	return len(r.SecurityErrors) == 0 && len(r.ContentErrors) == 0 && len(r.Missing) == 0
}

// Validate runs the path-safety and content sweeps over a parsed payload.
func Validate(payload *Payload) *ValidationResult {
	result := &ValidationResult{}

	for _, entry := range payload.Manifest {
		checkPathSafety(entry.Path, result)
	}
	for i := range payload.Files {
		checkPathSafety(payload.Files[i].Path, result)
	}
	for i := range payload.Patches {
		checkPathSafety(payload.Patches[i].Path, result)
	}

	// Security errors suppress everything else.
	if len(result.SecurityErrors) > 0 {
		return result
	}

	for i := range payload.Files {
		checkContent(&payload.Files[i], result)
	}

	result.Missing = missingBlocks(payload)
	return result
}

// checkPathSafety rejects traversal, absolute paths, sensitive targets,
// and hidden components.
func checkPathSafety(path string, result *ValidationResult) {
	reject := func(reason string) {
		result.SecurityErrors = append(result.SecurityErrors,
			fmt.Sprintf("%s: Security Violation - %s", path, reason))
	}

	normalized := strings.ReplaceAll(path, "\\", "/")

	if strings.Contains(normalized, "../") || strings.HasPrefix(normalized, "..") {
		reject("directory traversal (../) is forbidden")
		return
	}
	if strings.HasPrefix(normalized, "/") || driveLetterRe.MatchString(normalized) {
		reject("absolute paths are forbidden")
		return
	}

	lower := strings.ToLower(normalized)
	for _, sensitive := range sensitivePaths {
		if strings.Contains(lower, sensitive) {
			reject(fmt.Sprintf("modifying sensitive path '%s' is forbidden", sensitive))
			return
		}
	}

	for _, component := range strings.Split(normalized, "/") {
		if len(component) > 1 && strings.HasPrefix(component, ".") && component != ".." {
			reject(fmt.Sprintf("hidden path component '%s' is forbidden", component))
			return
		}
	}
}

// checkContent accumulates non-fatal quality errors for one file block.
func checkContent(block *models.FileBlock, result *ValidationResult) {
	add := func(msg string) {
		result.ContentErrors = append(result.ContentErrors, block.Path+": "+msg)
	}

	if strings.TrimSpace(block.Content) == "" {
		add("File is empty")
		return
	}

	for _, pattern := range markdownPatterns {
		if strings.Contains(block.Content, pattern) {
			add(fmt.Sprintf("Contains markdown code fence '%s' - use the sigil format, not markdown", pattern))
			break
		}
	}

	if !analyzer.HasIgnoreDirective(block.Content) {
		for _, marker := range truncationMarkers {
			if strings.Contains(block.Content, marker) {
				add(fmt.Sprintf("Detected truncation marker '%s'. Send complete files.", marker))
				break
			}
		}
	}

	if !strings.HasSuffix(block.Path, ".py") && !bracketsBalanced(block.Content) {
		add("Unbalanced braces/brackets detected. File may be truncated.")
	}
}

// bracketsBalanced runs a lightweight state machine over the content,
// ignoring characters inside string literals and after backslash escapes.
func bracketsBalanced(content string) bool {
	var stack []rune
	inString := false
	escaped := false

	for _, c := range content {
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{', '(', '[':
			stack = append(stack, c)
		case '}':
			if !popMatches(&stack, '{') {
				return false
			}
		case ')':
			if !popMatches(&stack, '(') {
				return false
			}
		case ']':
			if !popMatches(&stack, '[') {
				return false
			}
		}
	}

	return len(stack) == 0
}

func popMatches(stack *[]rune, want rune) bool {
	s := *stack
	if len(s) == 0 || s[len(s)-1] != want {
		return false
	}
	*stack = s[:len(s)-1]
	return true
}

// missingBlocks lists manifest entries with operation other than Delete
// that no FILE or PATCH block backs.
func missingBlocks(payload *Payload) []string {
	provided := make(map[string]bool, len(payload.Files)+len(payload.Patches))
	for i := range payload.Files {
		provided[payload.Files[i].Path] = true
	}
	for i := range payload.Patches {
		provided[payload.Patches[i].Path] = true
	}

	var missing []string
	for _, entry := range payload.Manifest {
		if entry.Operation != models.OpDelete && !provided[entry.Path] {
			missing = append(missing, entry.Path)
		}
	}
	return missing
}
