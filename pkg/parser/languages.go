package parser

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Spec bundles everything the analyzers need to know about one language:
// which node types are function-like, which contribute to cyclomatic
// complexity, which introduce nesting scopes, the definition and banned
// queries, and the import surface. Adding a language is a matter of
// populating one more record.
type Spec struct {
	Language Language

	// FunctionTypes are node types treated as function-like scopes.
	FunctionTypes map[string]bool

	// DecisionTypes are node types that each add 1 to cyclomatic complexity.
	DecisionTypes map[string]bool

	// NestingTypes are scope-introducing node types counted for depth.
	NestingTypes map[string]bool

	// DefQuery captures top-level definitions. The inner capture name is the
	// symbol kind, the outer @def capture spans the whole definition.
	DefQuery string

	// ImportTypes are node types that carry an import path.
	ImportTypes map[string]bool

	// BannedMethods maps method names in call expressions to the violation
	// message emitted for them. Nil when the language has no banned query.
	BannedMethods map[string]string

	// BannedTypes maps whole node types to violation messages.
	BannedTypes map[string]string
}

func makeSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

var specs = map[Language]*Spec{
	LangRust: {
		Language:      LangRust,
		FunctionTypes: makeSet("function_item"),
		DecisionTypes: makeSet(
			"if_expression", "while_expression", "for_expression",
			"loop_expression", "match_arm", "try_expression",
		),
		NestingTypes: makeSet("block"),
		DefQuery: `
(function_item name: (identifier) @function) @def
(struct_item name: (type_identifier) @struct) @def
(enum_item name: (type_identifier) @enum) @def
(trait_item name: (type_identifier) @trait) @def
(const_item name: (identifier) @constant) @def
(static_item name: (identifier) @constant) @def
(type_item name: (type_identifier) @type) @def
`,
		ImportTypes: makeSet("use_declaration"),
		BannedMethods: map[string]string{
			"unwrap": "Banned: '.unwrap()' found. Use ? or handle the None case.",
			"expect": "Banned: '.expect()' found. Use handleable errors.",
		},
	},
	LangGo: {
		Language:      LangGo,
		FunctionTypes: makeSet("function_declaration", "method_declaration"),
		DecisionTypes: makeSet(
			"if_statement", "for_statement",
			"expression_case", "type_case", "communication_case",
		),
		NestingTypes: makeSet("block"),
		DefQuery: `
(function_declaration name: (identifier) @function) @def
(method_declaration name: (field_identifier) @method) @def
(type_declaration (type_spec name: (type_identifier) @type)) @def
(const_declaration (const_spec name: (identifier) @constant)) @def
`,
		ImportTypes: makeSet("import_spec"),
	},
	LangPython: {
		Language:      LangPython,
		FunctionTypes: makeSet("function_definition"),
		DecisionTypes: makeSet(
			"if_statement", "elif_clause", "while_statement", "for_statement",
			"except_clause", "conditional_expression", "boolean_operator",
		),
		NestingTypes: makeSet("block"),
		DefQuery: `
(function_definition name: (identifier) @function) @def
(class_definition name: (identifier) @class) @def
`,
		ImportTypes: makeSet("import_statement", "import_from_statement"),
	},
	LangJavaScript: {
		Language: LangJavaScript,
		FunctionTypes: makeSet(
			"function_declaration", "function_expression",
			"arrow_function", "method_definition",
		),
		DecisionTypes: makeSet(
			"if_statement", "while_statement", "for_statement",
			"for_in_statement", "switch_case", "catch_clause",
			"ternary_expression",
		),
		NestingTypes: makeSet("statement_block"),
		DefQuery: `
(function_declaration name: (identifier) @function) @def
(class_declaration name: (identifier) @class) @def
`,
		ImportTypes: makeSet("import_statement"),
	},
	LangTypeScript: {
		Language: LangTypeScript,
		FunctionTypes: makeSet(
			"function_declaration", "function_expression",
			"arrow_function", "method_definition",
		),
		DecisionTypes: makeSet(
			"if_statement", "while_statement", "for_statement",
			"for_in_statement", "switch_case", "catch_clause",
			"ternary_expression",
		),
		NestingTypes: makeSet("statement_block"),
		DefQuery: `
(function_declaration name: (identifier) @function) @def
(class_declaration name: (type_identifier) @class) @def
(interface_declaration name: (type_identifier) @interface) @def
(type_alias_declaration name: (type_identifier) @type) @def
(enum_declaration name: (identifier) @enum) @def
`,
		ImportTypes: makeSet("import_statement"),
		BannedTypes: map[string]string{
			"non_null_expression": "Banned: non-null assertion '!' found. Narrow the type instead.",
		},
	},
}

func init() {
	// TSX shares the TypeScript surface; only the grammar differs.
	ts := *specs[LangTypeScript]
	ts.Language = LangTSX
	specs[LangTSX] = &ts
}

// SpecFor returns the language record, or nil for unsupported languages.
func SpecFor(lang Language) *Spec {
	return specs[lang]
}

var (
	defQueryMu    sync.Mutex
	defQueryCache = make(map[Language]*sitter.Query)
)

// CompileDefQuery returns the compiled definition query for a language.
// Compiled queries are cached for the life of the process.
func CompileDefQuery(lang Language) (*sitter.Query, error) {
	defQueryMu.Lock()
	defer defQueryMu.Unlock()

	if q, ok := defQueryCache[lang]; ok {
		return q, nil
	}

	spec := SpecFor(lang)
	if spec == nil {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	q, err := sitter.NewQuery([]byte(spec.DefQuery), tsLang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile definition query for %s: %w", lang, err)
	}

	defQueryCache[lang] = q
	return q, nil
}

// Definition is one match of a language's definition query.
type Definition struct {
	Name      string
	Kind      string
	Row       int // 1-based
	Node      *sitter.Node
	Signature string
}

// ExtractDefinitions runs the definition query over a parse result and
// returns matches in source order.
func ExtractDefinitions(result *ParseResult) []Definition {
	query, err := CompileDefQuery(result.Language)
	if err != nil {
		return nil
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, result.Tree.RootNode())

	var defs []Definition
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		def := Definition{}
		for _, capture := range match.Captures {
			name := query.CaptureNameForId(capture.Index)
			if name == "def" {
				def.Node = capture.Node
				continue
			}
			def.Kind = name
			def.Name = GetNodeText(capture.Node, result.Source)
			def.Row = int(capture.Node.StartPoint().Row) + 1
		}

		if def.Name != "" {
			if def.Node != nil {
				def.Signature = firstLine(GetNodeText(def.Node, result.Source))
			}
			defs = append(defs, def)
		}
	}

	return defs
}

func firstLine(s string) string {
	for i := range len(s) {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
