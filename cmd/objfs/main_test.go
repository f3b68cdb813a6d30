package main

import (
	"bytes"
	"crypto/md5" //nolint:gosec // test digests
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs/errors"
)

// seedDir writes a small tree used as the memory backend content.
func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"docs/a.txt":     "alpha",
		"docs/sub/b.txt": "beta",
		"top.txt":        "top",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

// run executes the CLI against a memory backend seeded from dir.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out, strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--backend", "memory", "--seed", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	dir := seedDir(t)

	out, err := run(t, dir, "", "ls")
	require.NoError(t, err)
	assert.Equal(t, "top.txt\n", out)

	out, err = run(t, dir, "", "ls", "--folders")
	require.NoError(t, err)
	assert.Equal(t, "docs/\n", out)

	out, err = run(t, dir, "", "ls", "-R", "docs/")
	require.NoError(t, err)
	assert.Equal(t, "docs/sub/b.txt\ndocs/a.txt\n", out)

	out, err = run(t, dir, "", "ls", "--ids", "-o", "json", "docs/")
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "docs/a.txt", items[0]["identifier"])
}

func TestReadCommands(t *testing.T) {
	dir := seedDir(t)

	out, err := run(t, dir, "", "cat", "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", out)

	out, err = run(t, dir, "", "stat", "-o", "json", "docs/a.txt")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "docs/a.txt", info["identifier"])
	assert.EqualValues(t, 5, info["size"])

	sum := md5.Sum([]byte("alpha")) //nolint:gosec // test digests
	out, err = run(t, dir, "", "hash", "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:])+"\n", out)

	out, err = run(t, dir, "", "exists", "missing.txt")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = run(t, dir, "", "exists", "-o", "yaml", "top.txt")
	require.NoError(t, err)
	assert.Equal(t, "exists: true\n", out)

	out, err = run(t, dir, "", "perms", "top.txt")
	require.NoError(t, err)
	assert.Equal(t, "rw\n", out)

	out, err = run(t, dir, "", "fetch", "top.txt")
	require.NoError(t, err)
	local := strings.TrimSpace(out)
	t.Cleanup(func() { _ = os.Remove(local) })
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "top", string(data))

	_, err = run(t, dir, "", "cat", "missing.txt")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestMutatingCommands(t *testing.T) {
	dir := seedDir(t)

	out, err := run(t, dir, "hello", "write", "top.txt")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	out, err = run(t, dir, "", "mkdir", "new", "docs/")
	require.NoError(t, err)
	assert.Equal(t, "docs/new/\n", out)

	out, err = run(t, dir, "", "mv", "docs/", "/", "archive")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/a.txt -> archive/a.txt\n")
	assert.Contains(t, out, "docs/sub/b.txt -> archive/sub/b.txt\n")

	out, err = run(t, dir, "", "cp", "top.txt", "docs/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "docs/top.txt\t3\t"), out)

	out, err = run(t, dir, "", "rename", "top.txt", "renamed.txt")
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt\n", out)

	_, err = run(t, dir, "", "rm", "docs/")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	out, err = run(t, dir, "", "rm", "-r", "docs/")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, dir, "", "rm", "missing.txt")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	local := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(local, []byte("note"), 0o600))
	out, err = run(t, dir, "", "put", local, "docs/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "docs/note.txt\t4\t"), out)
}

func TestConfiguration(t *testing.T) {
	dir := seedDir(t)

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "objfs.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"backend: memory\noutput: json\nmemory:\n  seed: "+dir+"\n"), 0o600))

		var out bytes.Buffer
		cmd := newRootCmd(&out, strings.NewReader(""))
		cmd.SetArgs([]string{"--config", path, "exists", "top.txt"})
		require.NoError(t, cmd.Execute())
		assert.JSONEq(t, `{"exists": true}`, out.String())
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("OBJFS_BACKEND", "memory")
		t.Setenv("OBJFS_MEMORY_SEED", dir)

		var out bytes.Buffer
		cmd := newRootCmd(&out, strings.NewReader(""))
		cmd.SetArgs([]string{"cat", "top.txt"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, "top", out.String())
	})

	t.Run("unknown backend", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd(&out, strings.NewReader(""))
		cmd.SetArgs([]string{"--backend", "ftp", "ls"})
		err := cmd.Execute()
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := run(t, dir, "", "ls", "-o", "xml")
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("missing swift credentials", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd(&out, strings.NewReader(""))
		cmd.SetArgs([]string{"--backend", "swift", "ls"})
		err := cmd.Execute()
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})
}
