// Package analyzer enforces the code-quality laws over source files.
package analyzer

import (
	"os"

	"github.com/junovhs/slopchop/internal/fileproc"
	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
)

// Engine evaluates files against the rule configuration.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates an analysis engine.
func NewEngine(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// AnalyzeFile analyzes a single file. Unreadable files yield an empty
// report; analysis failures never propagate as errors.
func (e *Engine) AnalyzeFile(psr *parser.Parser, path string, deep bool) models.FileReport {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.FileReport{Path: path}
	}

	report := AnalyzeContent(psr, path, content, e.cfg)

	if deep {
		if lang := parser.DetectLanguage(path); parser.SpecFor(lang) != nil {
			if result, err := psr.Parse(content, lang, path); err == nil {
				DeepAnalyze(result, e.cfg, &report)
			}
		}
	}

	return report
}

// Scan analyzes all files in parallel with one worker per hardware thread.
// Each worker is a pure function of (content, rules); report order matches
// the input list. The deep pass runs only past the small-project threshold.
func (e *Engine) Scan(root string, files []string, onProgress fileproc.ProgressFunc) *models.ScanReport {
	deep := len(files) > e.cfg.Rules.DeepAnalysisMinFiles

	reports, _ := fileproc.MapFilesWithProgress(files, func(psr *parser.Parser, path string) (models.FileReport, error) {
		return e.AnalyzeFile(psr, path, deep), nil
	}, onProgress)

	return &models.ScanReport{Root: root, Files: reports}
}
