package pack

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/junovhs/slopchop/pkg/parser"
)

// Skeleton renders a file with function bodies elided. Doc comments,
// imports, and type bodies are preserved verbatim; every top-level
// definition name survives.
func Skeleton(result *parser.ParseResult) string {
	spec := parser.SpecFor(result.Language)
	if spec == nil {
		return string(result.Source)
	}

	var b strings.Builder
	root := result.Tree.RootNode()

	for i := range int(root.NamedChildCount()) {
		node := root.NamedChild(i)
		nodeType := node.Type()

		switch {
		case isCommentType(nodeType), spec.ImportTypes[nodeType], isImportContainer(nodeType):
			b.WriteString(parser.GetNodeText(node, result.Source))
			b.WriteString("\n")
		case spec.FunctionTypes[nodeType]:
			b.WriteString(elideFunction(node, result))
			b.WriteString("\n")
		default:
			// Types, traits, constants, classes: keep the body, but elide
			// method bodies inside class-like scopes.
			b.WriteString(elideNested(node, result, spec))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func isCommentType(nodeType string) bool {
	return nodeType == "comment" || nodeType == "line_comment" || nodeType == "block_comment"
}

// isImportContainer matches wrapper nodes whose children are import specs.
func isImportContainer(nodeType string) bool {
	return nodeType == "import_declaration" || nodeType == "use_declaration" ||
		nodeType == "import_statement" || nodeType == "import_from_statement"
}

// elideFunction keeps the signature and replaces the body.
func elideFunction(fn *sitter.Node, result *parser.ParseResult) string {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return parser.GetNodeText(fn, result.Source)
	}

	head := string(result.Source[fn.StartByte():body.StartByte()])
	if result.Language == parser.LangPython {
		return strings.TrimRight(head, " \n\t") + "\n    ..."
	}
	return strings.TrimRight(head, " ") + " { ... }"
}

// elideNested renders a node verbatim except for function bodies nested
// inside it (class methods, impl blocks).
func elideNested(node *sitter.Node, result *parser.ParseResult, spec *parser.Spec) string {
	type span struct{ start, end uint32 }
	var bodies []span

	parser.WalkTyped(node, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if spec.FunctionTypes[nodeType] || nodeType == "method_definition" {
			if body := n.ChildByFieldName("body"); body != nil {
				bodies = append(bodies, span{body.StartByte(), body.EndByte()})
			}
			return false
		}
		return true
	})

	text := result.Source[node.StartByte():node.EndByte()]
	if len(bodies) == 0 {
		return string(text)
	}

	elision := "{ ... }"
	if result.Language == parser.LangPython {
		elision = "..."
	}

	var b strings.Builder
	offset := node.StartByte()
	cursor := uint32(0)
	for _, sp := range bodies {
		start := sp.start - offset
		end := sp.end - offset
		if start < cursor || end > uint32(len(text)) {
			continue
		}
		b.Write(text[cursor:start])
		b.WriteString(elision)
		cursor = end
	}
	b.Write(text[cursor:])
	return b.String()
}
