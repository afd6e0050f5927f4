package apply

import (
	"regexp"
	"strings"

	"github.com/junovhs/slopchop/pkg/models"
)

// Sigil delimits payload blocks. Chosen not to appear in normal prose or
// code.
const Sigil = "XSC7XSC"

// Payload is the parsed form of a sigil-delimited message.
type Payload struct {
	Plan     string
	Manifest models.Manifest
	Files    []models.FileBlock
	Patches  []models.PatchBlock
	Roadmap  string
}

// HasBlocks reports whether any recognized block was extracted.
func (p *Payload) HasBlocks() bool {
	return p.Plan != "" || len(p.Manifest) > 0 || len(p.Files) > 0 ||
		len(p.Patches) > 0 || p.Roadmap != ""
}

// ParseError describes a malformed payload.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// Parse extracts all blocks in one pass. Prose between blocks is ignored.
// A block missing its closing sigil is dropped silently.
func Parse(input string) (*Payload, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &ParseError{Reason: "Input is empty"}
	}

	payload := &Payload{}
	lines := strings.Split(input, "\n")

	i := 0
	for i < len(lines) {
		kind, arg, ok := parseOpener(lines[i])
		if !ok {
			i++
			continue
		}

		body, next, closed := collectBody(lines, i+1)
		if !closed {
			// Unterminated block: skip the opener and keep scanning.
			i++
			continue
		}
		i = next

		switch kind {
		case "PLAN":
			payload.Plan = strings.TrimSpace(body)
		case "MANIFEST":
			manifest, err := parseManifest(body)
			if err != nil {
				return nil, err
			}
			payload.Manifest = manifest
		case "FILE":
			if arg == "" {
				continue
			}
			payload.Files = append(payload.Files, models.FileBlock{
				Path:      arg,
				Content:   body,
				LineCount: strings.Count(body, "\n") + 1,
			})
		case "PATCH":
			if arg == "" {
				continue
			}
			patch, err := parsePatchBody(arg, body)
			if err != nil {
				return nil, err
			}
			payload.Patches = append(payload.Patches, patch)
		case "ROADMAP":
			payload.Roadmap = strings.TrimSpace(body)
		}
	}

	if !payload.HasBlocks() {
		return nil, &ParseError{Reason: "No payload blocks found. Use the " + Sigil + " sigil protocol."}
	}

	return payload, nil
}

// parseOpener matches `SIGIL KIND SIGIL [arg]` lines. END is not an opener.
func parseOpener(line string) (kind, arg string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, Sigil+" ") {
		return "", "", false
	}

	rest := strings.TrimPrefix(trimmed, Sigil+" ")
	idx := strings.Index(rest, " "+Sigil)
	if idx < 0 {
		return "", "", false
	}

	kind = strings.TrimSpace(rest[:idx])
	arg = strings.TrimSpace(rest[idx+len(" "+Sigil):])

	switch kind {
	case "PLAN", "MANIFEST", "FILE", "PATCH", "ROADMAP":
		return kind, arg, true
	default:
		return "", "", false
	}
}

// collectBody gathers lines until the closing sentinel. Returns the body,
// the index after the close, and whether the close was found. Reaching
// another block opener first means the block is unterminated.
func collectBody(lines []string, start int) (string, int, bool) {
	closer := Sigil + " END " + Sigil
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == closer {
			return strings.Join(lines[start:i], "\n"), i + 1, true
		}
		if _, _, ok := parseOpener(lines[i]); ok {
			return "", i, false
		}
	}
	return "", len(lines), false
}

var (
	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s+`)
	deliveryRe   = regexp.MustCompile(`(?i)^<delivery>(.*)</delivery>$`)
	opSuffixRe   = regexp.MustCompile(`(?i)\s*\[(new|delete)\]\s*$`)
)

// parseManifest reads one path per non-blank line. Order is preserved;
// duplicate paths are rejected.
func parseManifest(body string) (models.Manifest, error) {
	var manifest models.Manifest
	seen := make(map[string]bool)

	for _, line := range strings.Split(body, "\n") {
		entry, ok := parseManifestLine(line)
		if !ok {
			continue
		}
		if seen[entry.Path] {
			return nil, &ParseError{Reason: "Duplicate manifest entry: " + entry.Path}
		}
		seen[entry.Path] = true
		manifest = append(manifest, entry)
	}

	return manifest, nil
}

// parseManifestLine canonicalizes a single manifest line.
func parseManifestLine(line string) (models.ManifestEntry, bool) {
	line = strings.TrimSpace(line)
	line = listMarkerRe.ReplaceAllString(line, "")

	if m := deliveryRe.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(m[1])
	}

	op := models.OpUpdate
	if m := opSuffixRe.FindStringSubmatch(line); m != nil {
		switch strings.ToLower(m[1]) {
		case "new":
			op = models.OpNew
		case "delete":
			op = models.OpDelete
		}
		line = opSuffixRe.ReplaceAllString(line, "")
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return models.ManifestEntry{}, false
	}

	return models.ManifestEntry{Path: line, Operation: op}, true
}

// FormatManifestEntry renders an entry back to its canonical line form.
func FormatManifestEntry(entry models.ManifestEntry) string {
	switch entry.Operation {
	case models.OpNew:
		return entry.Path + " [NEW]"
	case models.OpDelete:
		return entry.Path + " [DELETE]"
	default:
		return entry.Path
	}
}

const (
	hunkSearchMarker  = "<<<< SEARCH"
	hunkDivider       = "===="
	hunkReplaceMarker = ">>>>"
	baseShaPrefix     = "BASE_SHA256:"
)

// parsePatchBody reads BASE_SHA256 and the search/replace hunks.
func parsePatchBody(path, body string) (models.PatchBlock, error) {
	patch := models.PatchBlock{Path: path}
	lines := strings.Split(body, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		switch {
		case strings.HasPrefix(line, baseShaPrefix):
			patch.BaseSHA256 = strings.TrimSpace(strings.TrimPrefix(line, baseShaPrefix))
			i++

		case line == hunkSearchMarker:
			hunk, next, err := parseHunk(path, lines, i+1)
			if err != nil {
				return patch, err
			}
			patch.Hunks = append(patch.Hunks, hunk)
			i = next

		default:
			i++
		}
	}

	return patch, nil
}

func parseHunk(path string, lines []string, start int) (models.PatchHunk, int, error) {
	var search, replace []string
	inReplace := false

	for i := start; i < len(lines); i++ {
		switch strings.TrimSpace(lines[i]) {
		case hunkDivider:
			inReplace = true
		case hunkReplaceMarker:
			return models.PatchHunk{
				Search:  strings.Join(search, "\n"),
				Replace: strings.Join(replace, "\n"),
			}, i + 1, nil
		default:
			if inReplace {
				replace = append(replace, lines[i])
			} else {
				search = append(search, lines[i])
			}
		}
	}

	return models.PatchHunk{}, len(lines), &ParseError{Reason: "Unterminated patch hunk in " + path}
}
