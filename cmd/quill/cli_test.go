package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"conf/global.yaml":     "site:\n  base_url: https://blog.example.com\n  locales: [en, ko]\n",
		"content/en/hello.mdx": "---\ntitle: Hello World\ndate: 2024-03-01\n---\nHi\n",
		"content/en/kept.mdx":  "---\ntitle: Kept\ndate: 2024-01-01\nid: a1b2c3d4\n---\n",
		"content/ko/hello.mdx": "---\ntitle: Hello Korea\ndate: 2024-03-01\nid: a1b2c3d4\n---\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	err := newApp(&out, &logs).Run(append([]string{"quill"}, args...))
	return out.String(), err
}

func TestAssignIDs_ThenList(t *testing.T) {
	root := project(t)

	out, err := run(t, "--root", root, "assign-ids", "--dry-run", "--locale", "en")
	require.NoError(t, err)
	assert.Contains(t, out, `"assigned": true`)
	src, _ := os.ReadFile(filepath.Join(root, "content/en/hello.mdx"))
	assert.NotContains(t, string(src), "id:", "dry run writes nothing")

	_, err = run(t, "--root", root, "assign-ids")
	require.NoError(t, err)
	src, _ = os.ReadFile(filepath.Join(root, "content/en/hello.mdx"))
	assert.Contains(t, string(src), "id:")

	out, err = run(t, "--root", root, "list", "--locale", "en")
	require.NoError(t, err)
	var rows []listed
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Regexp(t, `^hello-world-[0-9a-f]{8}$`, rows[0].Token)
	assert.False(t, rows[0].Legacy)
	assert.Equal(t, "kept-a1b2c3d4", rows[1].Token)
}

func TestResolve(t *testing.T) {
	root := project(t)

	out, err := run(t, "--root", root, "resolve", "ko", "old-slug-a1b2c3d4")
	require.NoError(t, err)
	var res resolved
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "stale", res.Outcome)
	assert.Equal(t, "/ko/blog/hello-korea-a1b2c3d4", res.Path)
	assert.Equal(t, "https://blog.example.com/ko/blog/hello-korea-a1b2c3d4", res.Canonical)

	out, err = run(t, "--root", root, "resolve", "en", "hello")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "legacy", res.Outcome)
}

func TestSitemap(t *testing.T) {
	root := project(t)

	out, err := run(t, "--root", root, "sitemap")
	require.NoError(t, err)
	assert.Contains(t, out, "<loc>https://blog.example.com/ko/blog/hello-korea-a1b2c3d4</loc>")

	dest := filepath.Join(t.TempDir(), "params.json")
	_, err = run(t, "--root", root, "sitemap", "--params", "--out", dest)
	require.NoError(t, err)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"token": "kept-a1b2c3d4"`)
}

func TestAssignIDs_RejectsSQLDriver(t *testing.T) {
	root := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf/global.yaml"), []byte(
		"site:\n  base_url: https://blog.example.com\n  locales: [en]\ncontent:\n  driver: sqlite\n  dsn: x.db\n"), 0o644))

	_, err := run(t, "--root", root, "assign-ids")
	assert.ErrorContains(t, err, "content.driver fs")
}
