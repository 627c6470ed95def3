package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/reactidoc/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	command string
	cfg     *app.Config
}

func execute(t *testing.T, args ...string) (*call, string, error) {
	t.Helper()
	var got *call
	out := &bytes.Buffer{}
	root := NewRootCommand(out, func(_ context.Context, command string, cfg *app.Config) error {
		got = &call{command: command, cfg: cfg}
		return nil
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return got, out.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		args      []string
		command   string
		check     func(t *testing.T, cfg *app.Config)
		exitCode  int
		expectErr bool
	}{
		{
			name:    "render with defaults",
			args:    []string{"render", "doc.hcl"},
			command: CommandRender,
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, []string{"doc.hcl"}, cfg.DocumentPaths)
				assert.Equal(t, "text", cfg.LogFormat)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.False(t, cfg.OverrideVariant)
				assert.Equal(t, 10, cfg.DisplayDigits)
			},
		},
		{
			name:    "render with every flag",
			args:    []string{"render", "a.hcl", "b", "--variant=3", "--seed=s", "--display", "--include-stale", "--log-level=DEBUG", "--log-format=json"},
			command: CommandRender,
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, []string{"a.hcl", "b"}, cfg.DocumentPaths)
				assert.True(t, cfg.OverrideVariant)
				assert.Equal(t, 3, cfg.Variant)
				assert.Equal(t, "s", cfg.Seed)
				assert.True(t, cfg.ForDisplay)
				assert.True(t, cfg.IncludeStale)
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name:    "variants",
			args:    []string{"variants", "doc.hcl", "-n", "25", "--workers", "8"},
			command: CommandVariants,
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, 25, cfg.Variants)
				assert.Equal(t, 8, cfg.Workers)
			},
		},
		{
			name:    "link",
			args:    []string{"link", "doc.hcl", "--host", "http://localhost:3000/socket.io/", "--connect-timeout", "2s", "--healthcheck-port", "8080"},
			command: CommandLink,
			check: func(t *testing.T, cfg *app.Config) {
				assert.Equal(t, "http://localhost:3000/socket.io/", cfg.HostURL)
				assert.Equal(t, "/", cfg.Namespace)
				assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
				assert.Equal(t, 8080, cfg.HealthcheckPort)
			},
		},
		{name: "link needs a host", args: []string{"link", "doc.hcl"}, expectErr: true},
		{name: "missing document", args: []string{"render"}, expectErr: true},
		{name: "unknown flag", args: []string{"render", "doc.hcl", "--nope"}, expectErr: true, exitCode: 2},
		{name: "invalid log level", args: []string{"render", "doc.hcl", "--log-level=loud"}, expectErr: true, exitCode: 2},
		{name: "invalid worker count", args: []string{"variants", "doc.hcl", "--workers=-1"}, expectErr: true, exitCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, _, err := execute(t, tc.args...)
			if tc.expectErr {
				require.Error(t, err)
				assert.Nil(t, got, "runner must not be called")
				if tc.exitCode != 0 {
					var exitErr *ExitError
					require.ErrorAs(t, err, &exitErr)
					assert.Equal(t, tc.exitCode, exitErr.Code)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tc.command, got.command)
			tc.check(t, got.cfg)
		})
	}
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()
	got, out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "variants")
}
