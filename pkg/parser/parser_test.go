package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	cases := map[string]Language{
		"src/main.rs": LangRust,
		"app.py":      LangPython,
		"index.js":    LangJavaScript,
		"widget.jsx":  LangTSX,
		"server.ts":   LangTypeScript,
		"view.tsx":    LangTSX,
		"main.go":     LangGo,
		"README.md":   LangUnknown,
		"binary":      LangUnknown,
		"UPPER.RS":    LangRust,
	}

	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestGetFunctionsRust(t *testing.T) {
	source := []byte(`fn alpha(a: i32, b: i32) -> i32 { a + b }

fn beta() {}
`)
	psr := New()
	defer psr.Close()

	result, err := psr.Parse(source, LangRust, "lib.rs")
	require.NoError(t, err)

	functions := GetFunctions(result)
	require.Len(t, functions, 2)

	assert.Equal(t, "alpha", functions[0].Name)
	assert.Equal(t, 2, functions[0].Arity)
	assert.Equal(t, uint32(1), functions[0].StartLine)
	require.NotNil(t, functions[0].Body)

	assert.Equal(t, "beta", functions[1].Name)
	assert.Equal(t, 0, functions[1].Arity)
}

func TestGetFunctionsGoMethods(t *testing.T) {
	source := []byte(`package main

type S struct{}

func (s *S) Handle(a, b string) error { return nil }
`)
	psr := New()
	defer psr.Close()

	result, err := psr.Parse(source, LangGo, "main.go")
	require.NoError(t, err)

	functions := GetFunctions(result)
	require.Len(t, functions, 1)
	assert.Equal(t, "Handle", functions[0].Name)
}

func TestExtractDefinitionsRust(t *testing.T) {
	source := []byte(`pub struct Config { pub max: usize }
pub enum Mode { A, B }
pub trait Runner { fn run(&self); }
pub fn build() -> Config { Config { max: 1 } }
const LIMIT: usize = 5;
type Alias = u64;
`)
	psr := New()
	defer psr.Close()

	result, err := psr.Parse(source, LangRust, "lib.rs")
	require.NoError(t, err)

	defs := ExtractDefinitions(result)
	byName := make(map[string]string)
	for _, d := range defs {
		byName[d.Name] = d.Kind
		assert.GreaterOrEqual(t, d.Row, 1)
	}

	assert.Equal(t, "struct", byName["Config"])
	assert.Equal(t, "enum", byName["Mode"])
	assert.Equal(t, "trait", byName["Runner"])
	assert.Equal(t, "function", byName["build"])
	assert.Equal(t, "constant", byName["LIMIT"])
	assert.Equal(t, "type", byName["Alias"])
}

func TestExtractDefinitionsGo(t *testing.T) {
	source := []byte(`package demo

type Widget struct{ ID int }

const Limit = 10

func NewWidget() *Widget { return nil }

func (w *Widget) Render() string { return "" }
`)
	psr := New()
	defer psr.Close()

	result, err := psr.Parse(source, LangGo, "demo.go")
	require.NoError(t, err)

	defs := ExtractDefinitions(result)
	byName := make(map[string]string)
	for _, d := range defs {
		byName[d.Name] = d.Kind
	}

	assert.Equal(t, "type", byName["Widget"])
	assert.Equal(t, "constant", byName["Limit"])
	assert.Equal(t, "function", byName["NewWidget"])
	assert.Equal(t, "method", byName["Render"])
}

func TestExtractImports(t *testing.T) {
	cases := []struct {
		path    string
		lang    Language
		source  string
		want    string
	}{
		{"main.go", LangGo, "package m\nimport \"fmt\"\n", "fmt"},
		{"lib.rs", LangRust, "use crate::util::helper;\n", "crate::util::helper"},
		{"app.py", LangPython, "import os.path\n", "os.path"},
		{"app.ts", LangTypeScript, "import { x } from './util';\n", "./util"},
	}

	psr := New()
	defer psr.Close()

	for _, tc := range cases {
		result, err := psr.Parse([]byte(tc.source), tc.lang, tc.path)
		require.NoError(t, err, tc.path)

		imports := ExtractImports(result)
		require.NotEmpty(t, imports, tc.path)
		assert.Equal(t, tc.want, imports[0].Path, tc.path)
	}
}

func TestLastComponent(t *testing.T) {
	cases := map[string]string{
		"crate::util::helper": "helper",
		"./components/Button": "Button",
		"os.path":             "path",
		"fmt":                 "fmt",
		"a::b::{c, d}":        "b",
	}
	for in, want := range cases {
		assert.Equal(t, want, LastComponent(in), in)
	}
}

func TestSpecFor(t *testing.T) {
	for _, lang := range []Language{LangGo, LangRust, LangPython, LangTypeScript, LangTSX, LangJavaScript} {
		spec := SpecFor(lang)
		require.NotNil(t, spec, string(lang))
		assert.NotEmpty(t, spec.FunctionTypes)
		assert.NotEmpty(t, spec.DefQuery)
	}
	assert.Nil(t, SpecFor(LangUnknown))
}

func TestCompileDefQueries(t *testing.T) {
	for _, lang := range []Language{LangGo, LangRust, LangPython, LangTypeScript, LangTSX, LangJavaScript} {
		_, err := CompileDefQuery(lang)
		assert.NoError(t, err, string(lang))
	}
}
