package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2000, cfg.Rules.MaxFileTokens)
	assert.Equal(t, 10, cfg.Rules.MaxCyclomaticComplexity)
	assert.Equal(t, 4, cfg.Rules.MaxNestingDepth)
	assert.Equal(t, 5, cfg.Rules.MaxFunctionArgs)
	assert.Equal(t, 3, cfg.Rules.MaxFunctionWords)
	assert.Equal(t, 5, cfg.Preferences.BackupRetention)
	assert.Equal(t, 10, cfg.Rules.DeepAnalysisMinFiles)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	root := t.TempDir()
	content := `[rules]
max_file_tokens = 500
max_function_args = 3
ignore_naming_on = ["generated"]

[rules.locality]
mode = "enforce"
max_distance = 1

[preferences]
backup_retention = 2
require_plan = true

[commands]
check = "cargo clippy"
fix = ["cargo fmt", "cargo fix"]
`
	path := filepath.Join(root, "slopchop.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Rules.MaxFileTokens)
	assert.Equal(t, 3, cfg.Rules.MaxFunctionArgs)
	// Unset keys keep their defaults.
	assert.Equal(t, 10, cfg.Rules.MaxCyclomaticComplexity)
	assert.Equal(t, []string{"generated"}, cfg.Rules.IgnoreNamingOn)
	assert.Equal(t, "enforce", cfg.Rules.Locality.Mode)
	assert.Equal(t, 2, cfg.Preferences.BackupRetention)
	assert.True(t, cfg.Preferences.RequirePlan)

	assert.Equal(t, []string{"cargo clippy"}, cfg.CommandList("check"))
	assert.Equal(t, []string{"cargo fmt", "cargo fix"}, cfg.CommandList("fix"))
	assert.Nil(t, cfg.CommandList("deploy"))
}

func TestLegacyConfigName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "warden.toml"),
		[]byte("[rules]\nmax_file_tokens = 123\n"), 0o644))

	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.Rules.MaxFileTokens)
}

func TestMalformedConfigAborts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "slopchop.toml"),
		[]byte("[rules\nbroken"), 0o644))

	_, err := LoadProject(root)
	assert.Error(t, err)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.MaxFileTokens = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Rules.Locality.Mode = "sometimes"
	assert.Error(t, cfg.Validate())
}

func TestIgnoreFilePatterns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".slopchopignore"),
		[]byte("# comment\n\n\\.gen\\.go$\nmigrations/\n"), 0o644))

	cfg, err := LoadProject(root)
	require.NoError(t, err)

	assert.True(t, cfg.Ignored("pkg/api.gen.go"))
	assert.True(t, cfg.Ignored("db/migrations/001.sql"))
	assert.False(t, cfg.Ignored("pkg/api.go"))
}

func TestInvalidIgnorePatternAborts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".slopchopignore"),
		[]byte("([unclosed\n"), 0o644))

	_, err := LoadProject(root)
	assert.Error(t, err)
}

func TestPathExemptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.IgnoreNamingOn = []string{"tests"}
	cfg.Rules.IgnoreTokensOn = []string{"fixtures"}

	assert.True(t, cfg.NamingExempt("src/tests/helper.rs"))
	assert.False(t, cfg.NamingExempt("src/main.rs"))
	assert.True(t, cfg.TokensExempt("fixtures/big.json"))
}

func TestProjectTypeDetection(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, ProjectUnknown, DetectProjectType(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]"), 0o644))
	assert.Equal(t, ProjectRust, DetectProjectType(root))
}

func TestCommandDefaultsFromProjectType(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]"), 0o644))

	cfg, err := LoadProject(root)
	require.NoError(t, err)

	check := cfg.CommandList("check")
	require.Len(t, check, 1)
	assert.Contains(t, check[0], "clippy")
}

func TestGenerateTOMLIsLoadable(t *testing.T) {
	root := t.TempDir()
	content := GenerateTOML(root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "slopchop.toml"), []byte(content), 0o644))
	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Rules.MaxFileTokens)
}
