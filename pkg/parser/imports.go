package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Import is one import relation found in a file.
type Import struct {
	Path string // raw import string, language-shaped
	Row  int    // 1-based
}

// ExtractImports collects import strings from a parse result in source order.
func ExtractImports(result *ParseResult) []Import {
	spec := SpecFor(result.Language)
	if spec == nil {
		return nil
	}

	var imports []Import
	root := result.Tree.RootNode()

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if !spec.ImportTypes[nodeType] {
			return true
		}
		if imp := extractImportPath(node, source, result.Language); imp != "" {
			imports = append(imports, Import{Path: imp, Row: int(node.StartPoint().Row) + 1})
		}
		return false
	})

	return imports
}

// extractImportPath pulls the import string out of an import node.
func extractImportPath(node *sitter.Node, source []byte, lang Language) string {
	switch lang {
	case LangGo:
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			return unquote(GetNodeText(pathNode, source))
		}

	case LangRust:
		if arg := node.ChildByFieldName("argument"); arg != nil {
			return strings.TrimSpace(GetNodeText(arg, source))
		}

	case LangPython:
		if modNode := node.ChildByFieldName("module_name"); modNode != nil {
			return GetNodeText(modNode, source)
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			return GetNodeText(nameNode, source)
		}

	case LangTypeScript, LangTSX, LangJavaScript:
		if sourceNode := node.ChildByFieldName("source"); sourceNode != nil {
			return unquote(GetNodeText(sourceNode, source))
		}
	}

	return ""
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// LastComponent returns the final identifier component of an import string,
// which is the key used to match references against definitions.
func LastComponent(imp string) string {
	imp = strings.TrimSuffix(imp, ";")
	// Strip use-list braces: a::b::{c, d} keys on the stem.
	if idx := strings.IndexByte(imp, '{'); idx >= 0 {
		imp = strings.TrimSuffix(strings.TrimSpace(imp[:idx]), "::")
	}

	for _, sep := range []string{"::", "/", "."} {
		if idx := strings.LastIndex(imp, sep); idx >= 0 {
			imp = imp[idx+len(sep):]
		}
	}
	return strings.TrimSpace(imp)
}
