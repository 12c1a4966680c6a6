package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lineage/internal/relative"
	"github.com/kingrea/lineage/internal/resolver"
)

func newVault(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("LINEAGE_VAULT", "")
	t.Setenv("LINEAGE_LOG_LEVEL", "debug")
	t.Setenv("EDITOR", "")
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--vault", root}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestInitWritesDefaultConfig(t *testing.T) {
	root := newVault(t, nil)
	out, _, err := execute(t, root, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")
	assert.Contains(t, readFile(t, root, ".lineage/config.yaml"), "root_marker: Void")
}

func TestInitSavesFlagOverrides(t *testing.T) {
	root := newVault(t, nil)
	_, _, err := execute(t, root, "init", "--locale", "sv", "--root-marker", "Root")
	require.NoError(t, err)
	cfg := readFile(t, root, ".lineage/config.yaml")
	assert.Contains(t, cfg, "locale: sv")
	assert.Contains(t, cfg, "root_marker: Root")

	_, _, err = execute(t, root, "init")
	require.NoError(t, err)
	assert.Equal(t, cfg, readFile(t, root, ".lineage/config.yaml"))

	_, _, err = execute(t, root, "init", "--locale", "not a locale!")
	require.Error(t, err)
	assert.Equal(t, cfg, readFile(t, root, ".lineage/config.yaml"))
}

func TestFindCreatesMissingNote(t *testing.T) {
	root := newVault(t, map[string]string{"Celestia/Alpha.md": "# Alpha"})

	out, _, err := execute(t, root, "find", "celestia", "Genesis.Weekly")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Genesis.Weekly\n"), out)
	assert.Equal(t, "\n# temp", readFile(t, root, "Celestia/Genesis.Weekly.md"))

	out, _, err = execute(t, root, "find", "celestia", "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha\n# Alpha\n", out)
}

func TestFindWithoutCreateSuggests(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Weekly.md": "# Weekly"})

	_, stderr, err := execute(t, root, "find", "--no-create", "void", "Wkly")
	require.ErrorIs(t, err, resolver.ErrNotFound)
	assert.Contains(t, stderr, "Did you mean: Weekly")
	assert.NoFileExists(t, filepath.Join(root, "Void", "Wkly.md"))
}

func TestFindRejectsUnknownPartition(t *testing.T) {
	root := newVault(t, nil)
	_, _, err := execute(t, root, "find", "limbo", "A")
	require.Error(t, err)
}

func TestPeriodicFounder(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Events.Weekly.md": "# Weekly"})

	out, _, err := execute(t, root, "periodic", "founder", "weekly", "Events.Weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly founder of Events.Weekly: Genesis.Weekly")
	assert.Equal(t, "\n# temp", readFile(t, root, "Celestia/Genesis.Weekly.md"))

	out, _, err = execute(t, root, "periodic", "father", "weekly", "2024.W12")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly father of 2024.W12: Events.Weekly")
}

func TestRelativeSibling(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Week.Tuesday.md": "# Tuesday\ntext\n## Notes\n"})

	out, _, err := execute(t, root, "--no-open", "relative", "Void/Week.Tuesday", "sibling", "Wednesday")
	require.NoError(t, err)
	assert.Contains(t, out, "Created and updated sibling: Week.Wednesday")
	assert.Equal(t, "# Wednesday\n## Notes", readFile(t, root, "Void/Week.Wednesday.md"))

	logOut, _, err := execute(t, root, "log", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, logOut, "indexed Week.Wednesday in Void/")
	assert.Contains(t, logOut, "Created and updated sibling: Week.Wednesday")
}

func TestRelativeFatherOfRootFails(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Week.md": "# Week"})
	_, _, err := execute(t, root, "--no-open", "relative", "Void/Week.md", "father")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root document has no father")
}

func TestRelativeSiblingOfRootFailsBeforeAskingForLabel(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Week.md": "# Week"})
	out, _, err := execute(t, root, "--no-open", "relative", "Void/Week.md", "sibling")
	require.ErrorIs(t, err, relative.ErrRootHasNoSibling)
	assert.NotContains(t, out, "Name of the sibling")

	logOut, _, err := execute(t, root, "log")
	require.NoError(t, err)
	assert.Contains(t, logOut, "Could not create the sibling")
}

func TestRelativeDryRunLeavesVaultUntouched(t *testing.T) {
	root := newVault(t, map[string]string{"Void/Week.md": "# Week"})

	out, _, err := execute(t, root, "--dry-run", "relative", "Void/Week.md", "child", "Monday")
	require.NoError(t, err)
	assert.Contains(t, out, "Created and updated child: Week.Monday")
	assert.NoFileExists(t, filepath.Join(root, "Void", "Week.Monday.md"))
}

func TestRelativeUnknownNote(t *testing.T) {
	root := newVault(t, nil)
	_, _, err := execute(t, root, "relative", "Void/Missing.md", "child", "X")
	require.Error(t, err)
}

func TestLogWithoutNotices(t *testing.T) {
	root := newVault(t, nil)
	out, _, err := execute(t, root, "log")
	require.NoError(t, err)
	assert.Equal(t, "No notices yet.\n", out)
}
