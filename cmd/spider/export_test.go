package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/spider"
	main "github.com/fwojciec/spider/cmd/spider"
	"github.com/fwojciec/spider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	store := &mock.FrontierStore{
		LoadFn: func(context.Context, string) (*spider.FrontierState, error) {
			return &spider.FrontierState{
				Waiting: []string{"https://example.com/c"},
				Visited: []string{"https://example.com/a", "https://example.com/b"},
			}, nil
		},
	}

	t.Run("prints visited set by default", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.ExportCmd{Name: "example.com", Set: "visited"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a\nhttps://example.com/b\n", stdout.String())
	})

	t.Run("prints waiting set", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Store: store}

		err := (&main.ExportCmd{Name: "example.com", Set: "waiting"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/c\n", stdout.String())
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
					return nil, errors.New("permission denied")
				},
			},
		}

		err := (&main.ExportCmd{Name: "example.com", Set: "visited"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: Internal error.")
	})
}
