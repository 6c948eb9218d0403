package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/cmd/vigil/commands"
	"go.trai.ch/vigil/internal/app"
	"go.trai.ch/vigil/internal/build"
)

type mockApp struct {
	serveFunc func(ctx context.Context, opts app.ServeOptions) error
}

func (m *mockApp) Serve(ctx context.Context, opts app.ServeOptions) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Serve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.ServeOptions
		called := false

		mock := &mockApp{
			serveFunc: func(_ context.Context, opts app.ServeOptions) error {
				capturedOpts = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve", "--config", "custom.yaml", "--log-format", "json", "--debug"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "custom.yaml", capturedOpts.ConfigPath)
		assert.Equal(t, "json", capturedOpts.LogFormat)
		assert.True(t, capturedOpts.Debug)
	})

	t.Run("returns error on serve failure", func(t *testing.T) {
		mock := &mockApp{
			serveFunc: func(_ context.Context, _ app.ServeOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"serve"})
		cli.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

		err := cli.Execute(context.Background())
		require.Error(t, err)
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetArgs([]string{"serve", "extra"})
		cli.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

		err := cli.Execute(context.Background())
		require.Error(t, err)
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := &bytes.Buffer{}
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), build.Version)
	assert.Contains(t, buf.String(), "vigil version")
}
