package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
)

func baseConfig() *config.Config {
	return &config.Config{
		Site: config.Site{
			Name:          "Quill",
			BaseURL:       "https://blog.example.com",
			Locales:       []string{"ko", "en"},
			DefaultLocale: "en",
		},
		Content: config.Content{RenderCache: 8},
	}
}

func TestOpen_FS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en", "hello.mdx"),
		[]byte("---\ntitle: Hello\nid: a1b2c3d4\n---\nHi\n"), 0o644))

	cfg := baseConfig()
	cfg.Content.Driver = "fs"
	cfg.Content.Dir = dir

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.DB)
	assert.Equal(t, []string{"en", "ko"}, s.GetLinks().Locales, "default locale first")
	assert.Equal(t, "en", s.GetNegotiator().Match(""))

	res := s.GetResolver().Resolve(context.Background(), "en", "hello-a1b2c3d4")
	require.True(t, res.Found())
	assert.False(t, res.Stale)
}

func TestOpen_FSMissingDir(t *testing.T) {
	cfg := baseConfig()
	cfg.Content.Driver = "fs"
	cfg.Content.Dir = filepath.Join(t.TempDir(), "nope")

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpen_SQLiteWithSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Content.Driver = "sqlite"
	cfg.Content.DSN = "file:" + filepath.Join(t.TempDir(), "content.db") + "?_pragma=busy_timeout(%s)"
	cfg.Content.Password = "vault:secret/quill#busy"

	var asked string
	secrets := func(_ context.Context, v string) (string, error) {
		asked = v
		return "5000", nil
	}

	ctx := context.Background()
	s, err := Open(ctx, cfg, WithSecrets(secrets))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "vault:secret/quill#busy", asked)
	require.NotNil(t, s.DB)

	store := content.NewSQLStore(s.DB)
	require.NoError(t, store.Put(ctx, "en", "hello",
		[]byte("---\ntitle: Hello Again\nid: a1b2c3d4\n---\nHi\n")))

	res := s.GetResolver().Resolve(ctx, "en", "hello-a1b2c3d4")
	require.True(t, res.Found())
	assert.True(t, res.Stale)
	assert.Equal(t, "hello-again-a1b2c3d4", res.Document.Token)
}

func TestOpen_SecretFailure(t *testing.T) {
	cfg := baseConfig()
	cfg.Content.Driver = "sqlite"
	cfg.Content.DSN = "file:" + filepath.Join(t.TempDir(), "x.db") + "?_pragma=busy_timeout(%s)"

	_, err := Open(context.Background(), cfg, WithSecrets(func(context.Context, string) (string, error) {
		return "", errors.New("sealed")
	}))
	assert.ErrorContains(t, err, "sealed")
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.Content{Driver: "redis"}, nil)
	assert.Error(t, err)
}
