package analyzer

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
)

// classScopeTypes are the class-like nodes examined by the deep pass.
var classScopeTypes = map[parser.Language][]string{
	parser.LangPython:     {"class_definition"},
	parser.LangTypeScript: {"class_declaration"},
	parser.LangTSX:        {"class_declaration"},
	parser.LangJavaScript: {"class_declaration"},
	parser.LangRust:       {"impl_item"},
}

// deepMethod holds per-method data for cohesion analysis.
type deepMethod struct {
	name       string
	usedFields map[string]bool
	fanOut     int
}

// DeepAnalyze computes LCOM4, CBO, and peak SFOUT for each class-like
// scope and emits DEEP ANALYSIS violations against configured thresholds.
func DeepAnalyze(result *parser.ParseResult, cfg *config.Config, report *models.FileReport) {
	scopeTypes, ok := classScopeTypes[result.Language]
	if !ok {
		return
	}

	scopeSet := make(map[string]bool, len(scopeTypes))
	for _, t := range scopeTypes {
		scopeSet[t] = true
	}

	root := result.Tree.RootNode()
	parser.WalkTyped(root, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if !scopeSet[nodeType] {
			return true
		}
		analyzeScope(n, result, cfg, report)
		return false // class scopes do not nest for this pass
	})
}

func analyzeScope(scope *sitter.Node, result *parser.ParseResult, cfg *config.Config, report *models.FileReport) {
	name := scopeName(scope, result)
	row := int(scope.StartPoint().Row) + 1

	methods := collectMethods(scope, result)
	if len(methods) == 0 {
		return
	}

	lcom := lcom4(methods)
	if lcom > cfg.Rules.MaxLCOM {
		report.Violations = append(report.Violations, models.Violation{
			Row: row,
			Message: fmt.Sprintf("'%s' splits into %d unrelated method groups (Max: %d). Break it up.",
				name, lcom, cfg.Rules.MaxLCOM),
			Law: models.LawDeep,
		})
	}

	cbo := countExternalTypes(scope, result)
	if cbo > cfg.Rules.MaxCBO {
		report.Violations = append(report.Violations, models.Violation{
			Row: row,
			Message: fmt.Sprintf("'%s' references %d external types (Max: %d). Too coupled.",
				name, cbo, cfg.Rules.MaxCBO),
			Law: models.LawDeep,
		})
	}

	for _, m := range methods {
		if m.fanOut > cfg.Rules.MaxFanOut {
			report.Violations = append(report.Violations, models.Violation{
				Row: row,
				Message: fmt.Sprintf("'%s.%s' makes %d outgoing calls (Max: %d).",
					name, m.name, m.fanOut, cfg.Rules.MaxFanOut),
				Law: models.LawDeep,
			})
			break // one SFOUT violation per scope is enough signal
		}
	}
}

func scopeName(scope *sitter.Node, result *parser.ParseResult) string {
	if nameNode := scope.ChildByFieldName("name"); nameNode != nil {
		return parser.GetNodeText(nameNode, result.Source)
	}
	// Rust impl blocks carry the type under the "type" field.
	if typeNode := scope.ChildByFieldName("type"); typeNode != nil {
		return parser.GetNodeText(typeNode, result.Source)
	}
	return "<anon>"
}

// collectMethods gathers the scope's methods with their field usage and
// outgoing call counts.
func collectMethods(scope *sitter.Node, result *parser.ParseResult) []deepMethod {
	spec := parser.SpecFor(result.Language)
	if spec == nil {
		return nil
	}

	var methods []deepMethod
	parser.WalkTyped(scope, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if !spec.FunctionTypes[nodeType] && nodeType != "method_definition" {
			return true
		}

		m := deepMethod{usedFields: make(map[string]bool)}
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			m.name = parser.GetNodeText(nameNode, src)
		}

		body := n.ChildByFieldName("body")
		if body != nil {
			collectFieldUses(body, result, m.usedFields)
			m.fanOut = countCalls(body, src)
		}

		if m.name != "" {
			methods = append(methods, m)
		}
		return false
	})

	return methods
}

// collectFieldUses records self/this member accesses inside a method body.
func collectFieldUses(body *sitter.Node, result *parser.ParseResult, fields map[string]bool) {
	parser.WalkTyped(body, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch result.Language {
		case parser.LangPython:
			if nodeType == "attribute" {
				obj := n.ChildByFieldName("object")
				attr := n.ChildByFieldName("attribute")
				if obj != nil && attr != nil && parser.GetNodeText(obj, src) == "self" {
					fields[parser.GetNodeText(attr, src)] = true
				}
			}
		case parser.LangTypeScript, parser.LangTSX, parser.LangJavaScript:
			if nodeType == "member_expression" {
				obj := n.ChildByFieldName("object")
				prop := n.ChildByFieldName("property")
				if obj != nil && prop != nil && parser.GetNodeText(obj, src) == "this" {
					fields[parser.GetNodeText(prop, src)] = true
				}
			}
		case parser.LangRust:
			if nodeType == "field_expression" {
				value := n.ChildByFieldName("value")
				field := n.ChildByFieldName("field")
				if value != nil && field != nil && parser.GetNodeText(value, src) == "self" {
					fields[parser.GetNodeText(field, src)] = true
				}
			}
		}
		return true
	})
}

// countCalls counts call expressions inside a method body.
func countCalls(body *sitter.Node, source []byte) int {
	count := 0
	parser.WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "call_expression", "call", "method_invocation":
			count++
		}
		return true
	})
	return count
}

// countExternalTypes counts distinct type references inside the scope that
// name something other than the scope itself.
func countExternalTypes(scope *sitter.Node, result *parser.ParseResult) int {
	own := scopeName(scope, result)
	seen := make(map[string]bool)

	parser.WalkTyped(scope, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if nodeType == "type_identifier" {
			name := parser.GetNodeText(n, src)
			if name != "" && name != own && !builtinTypes[name] {
				seen[name] = true
			}
		}
		return true
	})

	return len(seen)
}

var builtinTypes = map[string]bool{
	"String": true, "Vec": true, "Option": true, "Result": true, "Box": true,
	"str": true, "u8": true, "u16": true, "u32": true, "u64": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "isize": true,
	"f32": true, "f64": true, "bool": true, "char": true,
	"number": true, "string": true, "boolean": true, "any": true, "void": true,
	"unknown": true, "never": true, "object": true,
}

// lcom4 counts connected components of the method-field sharing graph.
func lcom4(methods []deepMethod) int {
	n := len(methods)
	if n == 0 {
		return 0
	}

	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if shareField(methods[i], methods[j]) {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	visited := make([]bool, n)
	components := 0

	var dfs func(int)
	dfs = func(v int) {
		visited[v] = true
		for _, u := range adj[v] {
			if !visited[u] {
				dfs(u)
			}
		}
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			dfs(i)
			components++
		}
	}

	return components
}

func shareField(a, b deepMethod) bool {
	for field := range a.usedFields {
		if b.usedFields[field] {
			return true
		}
	}
	return false
}
