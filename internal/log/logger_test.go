package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONToRotatingFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "runaround.log")
	var console bytes.Buffer

	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("router"), "route")
	l.Info("routed", slog.String("path", "p1"), slog.Int("points", 6))
	require.NoError(t, Close())

	b, err := os.ReadFile(fpath)
	require.NoError(t, err)

	var last string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	require.NotEmpty(t, last)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(last), &m))
	assert.Equal(t, AppName, m["app"])
	assert.Equal(t, "router", m["component"])
	assert.Equal(t, "route", m["op"])
	assert.Equal(t, "routed", m["msg"])
	assert.Equal(t, "p1", m["path"])

	// The console got the same record as JSON.
	assert.Contains(t, console.String(), `"msg":"routed"`)
}

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "console", Console: &buf})

	l := WithComponent("engine")
	l.Debug("hidden")
	l.Warn("slow recompute", slog.Float64("ms", 12.5), slog.Bool("fallback", true))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN slow recompute")
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "ms=12.5")
	assert.Contains(t, out, "fallback=true")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestWithOperationAddsOp(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "console", Console: &buf})

	WithOperation(WithComponent("engine"), "recompute").Debug("recompute finished", slog.Int("routed", 3))

	out := buf.String()
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "op=recompute")
	assert.Contains(t, out, "routed=3")
}

func TestWithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})

	L().WithGroup("route").Info("attempt", slog.Int("cell", 10))
	assert.Contains(t, buf.String(), "route.cell=10")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("RUNAROUND_LOG_LEVEL", "debug")
	t.Setenv("RUNAROUND_LOG_FORMAT", "json")
	t.Setenv("RUNAROUND_LOG_SOURCE", "TRUE")
	t.Setenv("RUNAROUND_LOG_FILE", "/tmp/x.log")

	opts := FromEnv()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "json", opts.Format)
	assert.True(t, opts.AddSource)
	assert.Equal(t, "/tmp/x.log", opts.File)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestAttrsBeforeGroupAreNotPrefixed(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})

	L().With(slog.String("component", "ui")).WithGroup("canvas").Info("drag", slog.Int("x", 4))
	out := buf.String()
	assert.Contains(t, out, " component=ui")
	assert.Contains(t, out, "canvas.x=4")
	assert.NotContains(t, out, "canvas.component")
}
