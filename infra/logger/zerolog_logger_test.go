package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestConfigureFileOutput(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
		outMu.Lock()
		file = nil
		outMu.Unlock()
	})
	path := filepath.Join(t.TempDir(), "logs", "obu.log")
	require.NoError(t, Configure(Options{Level: "info", File: path, MaxSizeMB: 1}))

	New("producer").Infof("route %s started", "chula")
	New("producer").Debugf("dropped below level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"component":"producer"`)
	assert.Contains(t, out, "route chula started")
	assert.False(t, strings.Contains(out, "dropped below level"))
}

func TestConfigureBadLevel(t *testing.T) {
	assert.Error(t, Configure(Options{Level: "loud"}))
}
