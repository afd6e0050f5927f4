package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
	"github.com/junovhs/slopchop/pkg/tokens"
)

// ignoreDirectives exempt a file when found in its first five lines.
var ignoreDirectives = []string{"slopchop:ignore", "warden:ignore"}

// HasIgnoreDirective reports whether the content opts out of analysis.
func HasIgnoreDirective(content string) bool {
	lines := strings.SplitN(content, "\n", 6)
	limit := min(len(lines), 5)
	for _, line := range lines[:limit] {
		for _, directive := range ignoreDirectives {
			if strings.Contains(line, directive) {
				return true
			}
		}
	}
	return false
}

// AnalyzeContent runs the full per-file pipeline over in-memory content.
// It is a pure function of (content, rules) apart from grammar loading.
func AnalyzeContent(psr *parser.Parser, path string, content []byte, cfg *config.Config) models.FileReport {
	report := models.FileReport{Path: path}

	if HasIgnoreDirective(string(content)) {
		return report
	}

	report.Tokens = tokens.Count(string(content))
	if report.Tokens > cfg.Rules.MaxFileTokens && !cfg.TokensExempt(path) {
		report.Violations = append(report.Violations, models.Violation{
			Row: 1,
			Message: fmt.Sprintf("File has %d tokens (Max: %d). Split it.",
				report.Tokens, cfg.Rules.MaxFileTokens),
			Law: models.LawAtomicity,
		})
	}

	lang := parser.DetectLanguage(path)
	report.Language = string(lang)
	spec := parser.SpecFor(lang)
	if spec == nil {
		return report
	}

	result, err := psr.Parse(content, lang, path)
	if err != nil {
		return report
	}

	checkFunctions(result, spec, cfg, &report)
	checkBanned(result, spec, path, &report)

	return report
}

// checkFunctions emits arity, nesting, complexity, and naming violations
// for every function-like node in preorder.
func checkFunctions(result *parser.ParseResult, spec *parser.Spec, cfg *config.Config, report *models.FileReport) {
	namingExempt := cfg.NamingExempt(result.Path)

	for _, fn := range parser.GetFunctions(result) {
		row := int(fn.StartLine)
		name := fn.Name
		if name == "" {
			name = "<anon>"
		}

		if fn.Arity > cfg.Rules.MaxFunctionArgs {
			report.Violations = append(report.Violations, models.Violation{
				Row: row,
				Message: fmt.Sprintf("Function '%s' has %d args (Max: %d)",
					name, fn.Arity, cfg.Rules.MaxFunctionArgs),
				Law: models.LawComplexity,
			})
		}

		if fn.Body != nil {
			depth := maxNesting(fn.Body, spec, 0)
			if depth > cfg.Rules.MaxNestingDepth {
				report.Violations = append(report.Violations, models.Violation{
					Row: row,
					Message: fmt.Sprintf("Deep Nesting: Max depth is %d. Extract logic. (Max: %d)",
						depth, cfg.Rules.MaxNestingDepth),
					Law: models.LawComplexity,
				})
			}

			score := cyclomaticComplexity(fn.Body, result.Source, spec)
			if score > report.PeakScore {
				report.PeakScore = score
			}
			if score > cfg.Rules.MaxCyclomaticComplexity {
				report.Violations = append(report.Violations, models.Violation{
					Row: row,
					Message: fmt.Sprintf("High Complexity: Score is %d. Hard to test. (Max: %d)",
						score, cfg.Rules.MaxCyclomaticComplexity),
					Law: models.LawComplexity,
				})
			}
		}

		if !namingExempt && fn.Name != "" {
			words := CountNameWords(fn.Name)
			if words > cfg.Rules.MaxFunctionWords {
				report.Violations = append(report.Violations, models.Violation{
					Row: row,
					Message: fmt.Sprintf("Function name '%s' has %d words (Max: %d)",
						fn.Name, words, cfg.Rules.MaxFunctionWords),
					Law: models.LawBluntness,
				})
			}
		}
	}
}

// cyclomaticComplexity is 1 + the count of decision points in the body.
func cyclomaticComplexity(body *sitter.Node, source []byte, spec *parser.Spec) int {
	count := 1

	parser.WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if spec.DecisionTypes[nodeType] {
			count++
		}
		if nodeType == "binary_expression" && hasLogicalOperator(n, src) {
			count++
		}
		return true
	})

	return count
}

// hasLogicalOperator reports whether a binary expression is && or ||.
func hasLogicalOperator(node *sitter.Node, source []byte) bool {
	for i := range int(node.ChildCount()) {
		switch node.Child(i).Type() {
		case "&&", "||":
			return true
		}
	}
	return false
}

// maxNesting finds the greatest nesting level of scope blocks under a node.
func maxNesting(node *sitter.Node, spec *parser.Spec, depth int) int {
	maxDepth := depth

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		childDepth := depth
		if spec.NestingTypes[child.Type()] {
			childDepth++
		}
		if d := maxNesting(child, spec, childDepth); d > maxDepth {
			maxDepth = d
		}
	}

	return maxDepth
}

// checkBanned emits violations for banned constructs. Test and spec paths
// are exempt.
func checkBanned(result *parser.ParseResult, spec *parser.Spec, path string, report *models.FileReport) {
	if len(spec.BannedMethods) == 0 && len(spec.BannedTypes) == 0 {
		return
	}
	if isTestPath(path) {
		return
	}

	root := result.Tree.RootNode()
	parser.WalkTyped(root, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if msg, ok := spec.BannedTypes[nodeType]; ok {
			report.Violations = append(report.Violations, models.Violation{
				Row:     int(n.StartPoint().Row) + 1,
				Message: msg,
				Law:     models.LawParanoia,
			})
		}

		if nodeType == "call_expression" && len(spec.BannedMethods) > 0 {
			if method := calledMethodName(n, src); method != "" {
				if msg, ok := spec.BannedMethods[method]; ok {
					report.Violations = append(report.Violations, models.Violation{
						Row:     int(n.StartPoint().Row) + 1,
						Message: msg,
						Law:     models.LawParanoia,
					})
				}
			}
		}
		return true
	})
}

// calledMethodName returns the method name of a field-style call (x.m()).
func calledMethodName(call *sitter.Node, source []byte) string {
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil || fnNode.Type() != "field_expression" {
		return ""
	}
	return parser.GetNodeText(fnNode.ChildByFieldName("field"), source)
}

// isTestPath reports whether any path segment marks test code.
func isTestPath(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(strings.ToLower(path), "/") {
		if strings.Contains(segment, "test") || strings.Contains(segment, "spec") {
			return true
		}
	}
	return false
}
