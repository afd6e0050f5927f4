package graph

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
)

// fileTags holds the extraction result for one file.
type fileTags struct {
	path    string
	defs    []models.Tag
	imports []parser.Import
	idents  map[string]*identUse
}

// identUse tracks occurrences of one unqualified identifier.
type identUse struct {
	count    int
	firstRow int
}

// extractFileTags parses one file and pulls out definitions, imports, and
// identifier occurrences. Parse failures contribute nothing.
func extractFileTags(psr *parser.Parser, path string, content []byte) fileTags {
	ft := fileTags{path: path, idents: make(map[string]*identUse)}

	lang := parser.DetectLanguage(path)
	if parser.SpecFor(lang) == nil {
		return ft
	}

	result, err := psr.Parse(content, lang, path)
	if err != nil {
		return ft
	}

	for _, def := range parser.ExtractDefinitions(result) {
		ft.defs = append(ft.defs, models.Tag{
			File:      path,
			Name:      def.Name,
			Kind:      models.TagDef,
			Row:       def.Row,
			Signature: def.Signature,
		})
	}

	ft.imports = parser.ExtractImports(result)

	root := result.Tree.RootNode()
	parser.WalkTyped(root, result.Source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "identifier", "type_identifier", "field_identifier":
			if name := parser.GetNodeText(n, src); name != "" {
				use := ft.idents[name]
				if use == nil {
					use = &identUse{firstRow: int(n.StartPoint().Row) + 1}
					ft.idents[name] = use
				}
				use.count++
			}
		}
		return true
	})

	return ft
}

// refTags converts imports and matching identifiers into reference tags.
// defined maps symbol names to their defining files; only names defined in
// some other file become references.
func (ft *fileTags) refTags(defined map[string]map[string]bool) []models.Tag {
	localDefs := make(map[string]bool, len(ft.defs))
	for _, d := range ft.defs {
		localDefs[d.Name] = true
	}

	var refs []models.Tag
	for _, imp := range ft.imports {
		key := parser.LastComponent(imp.Path)
		if key == "" {
			continue
		}
		refs = append(refs, models.Tag{File: ft.path, Name: key, Kind: models.TagRef, Row: imp.Row})
	}

	for name, use := range ft.idents {
		if localDefs[name] {
			continue
		}
		files, ok := defined[name]
		if !ok {
			continue
		}
		if len(files) == 1 && files[ft.path] {
			continue
		}
		for range use.count {
			refs = append(refs, models.Tag{File: ft.path, Name: name, Kind: models.TagRef, Row: use.firstRow})
		}
	}

	return refs
}
