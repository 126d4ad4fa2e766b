package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/spider"
	main "github.com/fwojciec/spider/cmd/spider"
	"github.com/fwojciec/spider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints set sizes", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.FrontierStore{
				LoadFn: func(_ context.Context, name string) (*spider.FrontierState, error) {
					assert.Equal(t, "example.com", name)
					return &spider.FrontierState{
						Waiting: []string{"https://example.com/b"},
						Visited: []string{"https://example.com", "https://example.com/a"},
					}, nil
				},
			},
		}

		err := (&main.StatusCmd{Name: "example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "waiting: 1")
		assert.Contains(t, stdout.String(), "visited: 2")
		assert.NotContains(t, stdout.String(), "Crawl finished.")
	})

	t.Run("reports finished crawl", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.FrontierStore{
				LoadFn: func(context.Context, string) (*spider.FrontierState, error) {
					return &spider.FrontierState{Visited: []string{"https://example.com"}}, nil
				},
			},
		}

		err := (&main.StatusCmd{Name: "example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Crawl finished.")
	})

	t.Run("shows helpful message when nothing is saved", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Store: &mock.FrontierStore{
				LoadFn: func(context.Context, string) (*spider.FrontierState, error) {
					return &spider.FrontierState{}, nil
				},
			},
		}

		err := (&main.StatusCmd{Name: "nothing"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `No saved state for "nothing"`)
	})

	t.Run("returns store error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Store: &mock.FrontierStore{
				LoadFn: func(context.Context, string) (*spider.FrontierState, error) {
					return nil, spider.Errorf(spider.EINVALID, "invalid frontier name %q", "../x")
				},
			},
		}

		err := (&main.StatusCmd{Name: "../x"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "invalid frontier name")
	})
}
