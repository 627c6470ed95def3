package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reactidoc/internal/hcldoc"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testDocument = `
variant {
  seed = "app"
}
mathinput "x" {
  prefill = "2"
}
number "square" {
  value = x.number * x.number
}
select_from_sequence "pick" {
  from = 1
  to   = 50
}
`

// setupApp writes files into a temp dir and builds an app over the first.
func setupApp(t *testing.T, cfg Config, files map[string]string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cfg.DocumentPaths = []string{filepath.Join(dir, "doc.hcl")}
	if script, ok := files["actions.yaml"]; ok && script != "" {
		cfg.ActionsPath = filepath.Join(dir, "actions.yaml")
	}
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a, err := NewApp(out, io.Discard, validated, hcldoc.NewLoader())
	require.NoError(t, err)
	return a, out
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{DocumentPaths: []string{"doc.hcl"}}},
		{name: "no document", cfg: Config{}, wantErr: true},
		{name: "bad log level", cfg: Config{DocumentPaths: []string{"doc.hcl"}, LogLevel: "loud"}, wantErr: true},
		{name: "bad log format", cfg: Config{DocumentPaths: []string{"doc.hcl"}, LogFormat: "xml"}, wantErr: true},
		{name: "negative variant", cfg: Config{DocumentPaths: []string{"doc.hcl"}, Variant: -1}, wantErr: true},
		{name: "bad host url", cfg: Config{DocumentPaths: []string{"doc.hcl"}, HostURL: "not a url"}, wantErr: true},
		{name: "too many digits", cfg: Config{DocumentPaths: []string{"doc.hcl"}, DisplayDigits: 40}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
			assert.Equal(t, 1, cfg.Variants)
		})
	}
}

func TestReadScript(t *testing.T) {
	actions, err := ReadScript(strings.NewReader(`
actions:
  - component: doc.x
    action: updateValue
    args: "y + 1"
  - component: doc.p
    action: movePoint
    args: {x: 1, y: -2}
`))
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "doc.x", actions[0].Component)
	assert.Equal(t, "y + 1", actions[0].Args.AsString())
	assert.Equal(t, "movePoint", actions[1].Name)
	assert.True(t, actions[1].Args.Type().IsObjectType())

	empty, err := ReadScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ReadScript(strings.NewReader("actions:\n  - action: submitAnswer\n"))
	require.Error(t, err)
}

func TestRender_AppliesScript(t *testing.T) {
	a, out := setupApp(t, Config{ForDisplay: true}, map[string]string{
		"doc.hcl": testDocument,
		"actions.yaml": `
actions:
  - component: doc.x
    action: updateValue
    args: 5
`,
	})

	require.NoError(t, a.Render(context.Background()))

	var report Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "app", report.Seed)
	assert.Equal(t, "25", report.State["doc.square"]["value"])
	assert.Contains(t, report.Commitments, "doc.pick")
	assert.Empty(t, report.Diagnostics)
}

func TestRender_ScriptErrorStops(t *testing.T) {
	a, _ := setupApp(t, Config{}, map[string]string{
		"doc.hcl": testDocument,
		"actions.yaml": `
actions:
  - component: doc.missing
    action: updateValue
    args: 1
`,
	})
	err := a.Render(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script action 1")
}

func TestRenderVariants(t *testing.T) {
	render := func() []Report {
		a, out := setupApp(t, Config{Variants: 6, Workers: 3}, map[string]string{"doc.hcl": testDocument})
		require.NoError(t, a.RenderVariants(context.Background()))
		var reports []Report
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &reports))
		return reports
	}

	first := render()
	require.Len(t, first, 6)
	for i, r := range first {
		assert.Equal(t, i, r.Variant, "reports are ordered by variant")
		assert.Nil(t, r.State)
		assert.Contains(t, r.Commitments, "doc.pick")
	}
	second := render()
	for i := range first {
		assert.Equal(t, first[i].Commitments, second[i].Commitments, "variants are reproducible")
	}
}

func TestMonitoringMux(t *testing.T) {
	a, _ := setupApp(t, Config{}, map[string]string{"doc.hcl": testDocument})
	reg := prometheus.NewRegistry()
	metrics.New(reg).Actions.WithLabelValues("updateValue", "ok").Inc()

	srv := httptest.NewServer(a.newMonitoringMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `reactidoc_session_actions_total{action="updateValue",status="ok"} 1`)
}

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		wantDebug bool
		wantJSON  bool
	}{
		{name: "text at info", cfg: Config{LogFormat: "text", LogLevel: "info"}},
		{name: "json at debug", cfg: Config{LogFormat: "json", LogLevel: "debug"}, wantDebug: true, wantJSON: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.cfg.DocumentPaths = []string{"quiz.hcl"}
			logger := newLogger(&tc.cfg, &buf)

			logger.Debug("hidden unless debug")
			logger.Info("always")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, strings.Contains(out, "hidden unless debug"))
			assert.Contains(t, out, "quiz.hcl")
			assert.Equal(t, tc.wantJSON, strings.HasPrefix(out, "{"))
		})
	}
}
