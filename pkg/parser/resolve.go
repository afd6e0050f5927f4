package parser

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveImport maps a language-shaped import string to an on-disk path.
// Returns empty string when the import does not resolve to a local file.
func ResolveImport(projectRoot, currentFile, imp string) string {
	switch DetectLanguage(currentFile) {
	case LangRust:
		return resolveRust(projectRoot, currentFile, imp)
	case LangTypeScript, LangTSX, LangJavaScript:
		return resolveJS(currentFile, imp)
	case LangPython:
		return resolvePython(projectRoot, imp)
	default:
		return ""
	}
}

func resolveRust(root, current, imp string) string {
	imp = strings.TrimSuffix(imp, ";")

	if rest, ok := strings.CutPrefix(imp, "crate::"); ok {
		return checkVariations(filepath.Join(root, "src"), splitRustPath(rest), "rs")
	}

	if strings.HasPrefix(imp, "super::") {
		parts := splitRustPath(imp)
		dir := filepath.Dir(current)
		for len(parts) > 0 && parts[0] == "super" {
			parts = parts[1:]
			dir = filepath.Dir(dir)
		}
		if len(parts) == 0 {
			return ""
		}
		return checkVariations(dir, parts, "rs")
	}

	if rest, ok := strings.CutPrefix(imp, "self::"); ok {
		return checkVariations(filepath.Dir(current), splitRustPath(rest), "rs")
	}

	if !strings.Contains(imp, "::") {
		return checkVariations(filepath.Dir(current), []string{imp}, "rs")
	}

	return ""
}

func splitRustPath(imp string) []string {
	parts := strings.Split(imp, "::")
	// A trailing use-list or glob never names a file.
	for len(parts) > 0 {
		last := parts[len(parts)-1]
		if last == "*" || strings.HasPrefix(last, "{") {
			parts = parts[:len(parts)-1]
			continue
		}
		break
	}
	return parts
}

var jsExtensions = []string{"ts", "tsx", "js", "jsx", "json"}

func resolveJS(current, imp string) string {
	// Only relative imports resolve; bare specifiers are external packages.
	if !strings.HasPrefix(imp, ".") {
		return ""
	}

	path := filepath.Join(filepath.Dir(current), imp)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	for _, ext := range jsExtensions {
		if p := path + "." + ext; fileExists(p) {
			return p
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		for _, ext := range jsExtensions {
			if p := filepath.Join(path, "index."+ext); fileExists(p) {
				return p
			}
		}
	}
	return ""
}

func resolvePython(root, imp string) string {
	// Relative imports (from . import x) are not resolved.
	if strings.HasPrefix(imp, ".") {
		return ""
	}
	return checkVariations(root, strings.Split(imp, "."), "py")
}

// checkVariations tries <base>/<parts>.<ext>, then the directory index form
// (mod.rs / __init__.py).
func checkVariations(base string, parts []string, ext string) string {
	current := base
	for _, part := range parts {
		current = filepath.Join(current, part)
	}

	if p := current + "." + ext; fileExists(p) {
		return p
	}

	var index string
	switch ext {
	case "rs":
		index = "mod.rs"
	case "py":
		index = "__init__.py"
	default:
		return ""
	}

	if p := filepath.Join(current, index); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
