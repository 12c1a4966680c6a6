package editor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lineage/internal/document"
)

type rootResolver struct {
	root string
	err  error
}

func (r rootResolver) Abs(p string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return path.Join(r.root, p), nil
}

func TestOpenPrintsPathWithoutEditor(t *testing.T) {
	var out bytes.Buffer
	o := New("  ", rootResolver{root: "/vault"}, WithIO(nil, &out, &out))

	require.NoError(t, o.Open(context.Background(), document.New("Void/A.md", "")))
	assert.Equal(t, "/vault/Void/A.md\n", out.String())
}

func TestOpenRunsEditorWithArguments(t *testing.T) {
	var got []string
	o := New("code --wait", rootResolver{root: "/vault"})
	o.run = func(cmd *exec.Cmd) error {
		got = cmd.Args
		return nil
	}

	require.NoError(t, o.Open(context.Background(), document.New("Celestia/B.md", "")))
	assert.Equal(t, []string{"code", "--wait", "/vault/Celestia/B.md"}, got)
}

func TestOpenReportsFailures(t *testing.T) {
	o := New("vim", rootResolver{err: errors.New("escape")})
	err := o.Open(context.Background(), document.New("../x.md", ""))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "editor: resolve"))

	o = New("vim", nil)
	boom := errors.New("not installed")
	o.run = func(*exec.Cmd) error { return boom }
	err = o.Open(context.Background(), document.New("Void/A.md", ""))
	require.ErrorIs(t, err, boom)
}

func TestNop(t *testing.T) {
	require.NoError(t, Nop{}.Open(context.Background(), document.Document{}))
}
