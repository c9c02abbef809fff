package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.Equal(t, 10, cfg.Listing.DefaultPerPage)
	assert.Equal(t, 100, cfg.Listing.MaxPerPage)
	assert.Equal(t, "X-User-ID", cfg.Auth.UserHeader)
	assert.False(t, cfg.Auth.EnforceOwnership)
	assert.Equal(t, "IDR", cfg.Presentation.Currency)
	assert.Equal(t, 30*24*time.Hour, cfg.Trash.Retention)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LIST_DEFAULT_PER_PAGE", "50")
	t.Setenv("LIST_MAX_PER_PAGE", "20")
	t.Setenv("AUTH_ENFORCE_OWNERSHIP", "true")
	t.Setenv("CURRENCY", " usd ")
	t.Setenv("OBS_PROMETHEUS_PATH", "metrics")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Listing.DefaultPerPage)
	assert.Equal(t, 50, cfg.Listing.MaxPerPage)
	assert.True(t, cfg.Auth.EnforceOwnership)
	assert.Equal(t, "USD", cfg.Presentation.Currency)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestNewRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad port":          {"HTTP_PORT": "0"},
		"bad cache driver":  {"CACHE_DRIVER": "memcached"},
		"empty user header": {"AUTH_USER_HEADER": " "},
		"bad retention":     {"TRASH_RETENTION": "-1h"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MESSAGING_ENABLED", "false")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ORDERDESK_SLICE", " a, ,b ")
	t.Setenv("ORDERDESK_INT", "nope")

	assert.Equal(t, []string{"a", "b"}, getEnvAsStringSlice("ORDERDESK_SLICE", nil))
	assert.Equal(t, 7, getEnvAsInt("ORDERDESK_INT", 7))
	assert.Equal(t, time.Second, getEnvAsDuration("ORDERDESK_MISSING", time.Second))

	t.Setenv("ORDERDESK_BLANK", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("ORDERDESK_BLANK", []string{"x"}))
	t.Setenv("ORDERDESK_FLOAT", " 0.5 ")
	assert.Equal(t, 0.5, getEnvAsFloat("ORDERDESK_FLOAT", 1))
}

func TestTraceSampleRatio(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("CACHE_ENABLED", "false")

	t.Setenv("OBS_TRACE_SAMPLE_RATIO", "0.25")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Observability.TraceSampleRatio)

	t.Setenv("OBS_TRACE_SAMPLE_RATIO", "1.5")
	_, err = New()
	assert.Error(t, err)

	t.Setenv("OBS_TRACE_SAMPLE_RATIO", "half")
	cfg, err = New()
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Observability.TraceSampleRatio)
}
