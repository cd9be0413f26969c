package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/moolen/upgradelens/internal/config"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
)

const releaseNotes = "PodSecurityPolicy was removed in Kubernetes 1.25. " +
	"The extensions/v1beta1 Ingress API is deprecated; migrate to networking.k8s.io/v1."

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestParseLogLevelFlags(t *testing.T) {
	t.Setenv("LOG_LEVEL_CONFIG_WATCHER", "debug")

	tests := []struct {
		name         string
		flags        []string
		wantDefault  string
		wantPackages map[string]string
		wantErr      bool
	}{
		{
			name:         "default only",
			flags:        []string{"warn"},
			wantDefault:  "warn",
			wantPackages: map[string]string{"config.watcher": "debug"},
		},
		{
			name:         "package flag overrides env",
			flags:        []string{"default=error", "config.watcher=info", "api=warn"},
			wantDefault:  "error",
			wantPackages: map[string]string{"config.watcher": "info", "api": "warn"},
		},
		{
			name:    "invalid default",
			flags:   []string{"loud"},
			wantErr: true,
		},
		{
			name:    "invalid package level",
			flags:   []string{"api=verbose"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, pkgs, err := parseLogLevelFlags(tt.flags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, def)
			assert.Equal(t, tt.wantPackages, pkgs)
		})
	}
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "config.watcher", convertEnvKeyToPackageName("LOG_LEVEL_CONFIG_WATCHER"))
	assert.Equal(t, "api", convertEnvKeyToPackageName("LOG_LEVEL_API"))
}

func TestAnalyzeFromStdin(t *testing.T) {
	out, err := run(t, releaseNotes, "analyze")
	require.NoError(t, err)

	var r models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.NotEmpty(t, r.AnalysisID)
	assert.Equal(t, len(releaseNotes), r.InputTextLength)
	assert.Len(t, r.BreakingChanges, 4)
}

func TestAnalyzeFileWithEntities(t *testing.T) {
	dir := t.TempDir()
	notesPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notesPath, []byte(releaseNotes), 0o600))
	entitiesPath := filepath.Join(dir, "entities.json")
	require.NoError(t, os.WriteFile(entitiesPath,
		[]byte(`[{"text": "Kubernetes", "type": "ORGANIZATION", "confidence": 0.95, "begin_offset": 33, "end_offset": 43}]`), 0o600))

	out, err := run(t, "", "analyze", notesPath, "--entities", entitiesPath, "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	entities := doc["entities"].(map[string]interface{})
	external := entities["external_entities"].([]interface{})
	require.Len(t, external, 1)
	assert.Equal(t, "Kubernetes", external[0].(map[string]interface{})["text"])
}

func TestAnalyzeRejects(t *testing.T) {
	_, err := run(t, releaseNotes, "analyze", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = run(t, "", "analyze", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "failed to read")

	entitiesPath := filepath.Join(t.TempDir(), "entities.json")
	require.NoError(t, os.WriteFile(entitiesPath,
		[]byte(`[{"text": "x", "type": "T", "confidence": 2, "begin_offset": 0, "end_offset": 1}]`), 0o600))
	_, err = run(t, releaseNotes, "analyze", "--entities", entitiesPath)
	assert.True(t, models.IsInvalidEntityError(err))
}

func TestBreakingChangesMarkdown(t *testing.T) {
	out, err := run(t, releaseNotes, "breaking-changes")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Upgrade readiness\n"), out)
	assert.Contains(t, out, "| 10.0 / 10 | yes | yes |")
	assert.Contains(t, out, "`extensions/v1beta1`")
}

func TestBreakingChangesJSON(t *testing.T) {
	out, err := run(t, releaseNotes, "breaking-changes", "-o", "json")
	require.NoError(t, err)

	var report models.BreakingChangeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.AnalysisID)
	assert.Equal(t, 10.0, report.SeverityAssessment.OverallScore)
	assert.Len(t, report.CriticalActions, 3)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	docs := []string{releaseNotes, "Added support for Pod readiness gates.", "Fixed a bug in kube-proxy."}
	files := make([]string, len(docs))
	for i, doc := range docs {
		files[i] = filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(files[i], []byte(doc), 0o600))
	}

	out, err := run(t, "", append([]string{"batch", "--concurrency", "2"}, files...)...)
	require.NoError(t, err)

	var items []BatchItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, len(docs))
	for i, item := range items {
		assert.Equal(t, files[i], item.File)
		assert.Equal(t, len(docs[i]), item.Result.InputTextLength)
	}

	_, err = run(t, "", "batch", "--concurrency", "0", files[0])
	assert.Error(t, err)

	_, err = run(t, "", "batch", files[0], filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "missing.txt")
}

func TestPatternsExportAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")

	out, err := run(t, "", "patterns", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote pattern registry")

	spec, err := config.LoadPatternsFile(path)
	require.NoError(t, err)
	assert.Equal(t, patterns.DefaultSpec(), spec)

	out, err = run(t, "", "patterns", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("categories:\n  - category: NOT_A_CATEGORY\n    severity: HIGH\n"), 0o600))
	_, err = run(t, "", "patterns", "validate", bad)
	assert.Error(t, err)
}

func TestPatternsFlagChangesAnalysis(t *testing.T) {
	spec := patterns.DefaultSpec()
	spec.Categories = spec.Categories[:1]
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, config.WritePatternsFile(path, spec))

	out, err := run(t, releaseNotes, "--patterns", path, "analyze")
	require.NoError(t, err)

	var r models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	for _, m := range r.Classifications {
		assert.Equal(t, models.CategoryBreakingChange, m.Category)
	}
}

func TestConfigFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600))

	_, err := run(t, releaseNotes, "--config", path, "analyze")
	assert.ErrorContains(t, err, "server.port")
}
