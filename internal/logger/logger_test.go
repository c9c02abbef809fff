package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestBuildConfig(t *testing.T) {
	cases := []struct {
		name     string
		obs      config.Observability
		encoding string
		level    zapcore.Level
	}{
		{"defaults to json info", config.Observability{}, "json", zapcore.InfoLevel},
		{"console debug", config.Observability{LogEncoding: " Console ", LogLevel: "DEBUG"}, "console", zapcore.DebugLevel},
		{"unknown encoding", config.Observability{LogEncoding: "logfmt", LogLevel: "warn"}, "json", zapcore.WarnLevel},
		{"unknown level", config.Observability{LogLevel: "chatty"}, "json", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			zc := buildConfig(tc.obs)
			assert.Equal(t, tc.encoding, zc.Encoding)
			assert.Equal(t, tc.level, zc.Level.Level())
		})
	}
}

func TestNew(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	log, err := New(lc, config.Config{Observability: config.Observability{ServiceName: "orderdesk", LogLevel: "error"}})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))

	lc.RequireStart()
	lc.RequireStop()
}
