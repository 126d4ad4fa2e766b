package main_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/spider/cmd/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestYAMLLoader(t *testing.T) {
	t.Parallel()

	t.Run("sets global and command flags", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, strings.Join([]string{
			"store: sqlite",
			"crawl:",
			"  workers: 16",
			"  idle-timeout: 10s",
			"  sitemap: true",
			"",
		}, "\n"))

		cli := &main.CLI{}
		parser, err := kong.New(cli,
			kong.Exit(func(int) {}),
			kong.Configuration(main.YAMLLoader, path),
		)
		require.NoError(t, err)

		_, err = parser.Parse([]string{"crawl", "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cli.Store)
		assert.Equal(t, 16, cli.Crawl.Workers)
		assert.Equal(t, 10*time.Second, cli.Crawl.IdleTimeout)
		assert.True(t, cli.Crawl.Sitemap)
	})

	t.Run("accepts underscores in keys", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "crawl:\n  idle_timeout: 2s\n")

		cli := &main.CLI{}
		parser, err := kong.New(cli,
			kong.Exit(func(int) {}),
			kong.Configuration(main.YAMLLoader, path),
		)
		require.NoError(t, err)

		_, err = parser.Parse([]string{"crawl", "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, 2*time.Second, cli.Crawl.IdleTimeout)
	})

	t.Run("command line overrides config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "crawl:\n  workers: 16\n")

		cli := &main.CLI{}
		parser, err := kong.New(cli,
			kong.Exit(func(int) {}),
			kong.Configuration(main.YAMLLoader, path),
		)
		require.NoError(t, err)

		_, err = parser.Parse([]string{"crawl", "--workers=2", "https://example.com"})
		require.NoError(t, err)

		assert.Equal(t, 2, cli.Crawl.Workers)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		resolver, err := main.YAMLLoader(strings.NewReader(""))
		require.NoError(t, err)
		assert.NotNil(t, resolver)
	})

	t.Run("returns error for malformed YAML", func(t *testing.T) {
		t.Parallel()

		_, err := main.YAMLLoader(strings.NewReader("store: [unclosed"))
		assert.Error(t, err)
	})
}
