package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/webotp/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
bridge:
  enabled: true
  event_name: web-otp-autofill
  transports: sms
  global:
    start: dzengoStartWebOtp
    stop: dzengoStopWebOtp
app:
  server:
    max_goroutine: 16
    cors: "http://localhost:3000, https://example.com ,"
    http:
      read_timeout_seconds: 5
instrument:
  trace_sample_ratio: 0.25
  log_mask_fields: [otp, code]
simulator:
  totp:
    period: 30
  labels: "env:dev,team:auth"
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.True(t, cfg.GetBool("bridge.enabled"))
	assert.Equal(t, "dzengoStartWebOtp", cfg.GetString("bridge.global.start"))
	assert.Equal(t, 16, cfg.GetInt("app.server.max_goroutine"))
	assert.Equal(t, uint(30), cfg.GetUint("simulator.totp.period"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, 5*time.Second, cfg.GetSecond("app.server.http.read_timeout_seconds"))
	assert.Equal(t, []string{"sms"}, cfg.GetArray("bridge.transports"))
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"otp", "code"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Equal(t, map[string]string{"env": "dev", "team": "auth"}, cfg.GetMap("simulator.labels"))
	assert.Empty(t, cfg.GetArray("missing.key"))
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := config.NewViperFromBytes(" ", []byte(sample))
	assert.Error(t, err)
}

func TestNewViper_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	t.Setenv("WEBOTP_BRIDGE_EVENT_NAME", "otp-ready")

	cfg, err := config.NewViper(file)
	require.NoError(t, err)

	assert.Equal(t, "otp-ready", cfg.GetString("bridge.event_name"))
	assert.Equal(t, "dzengoStopWebOtp", cfg.GetString("bridge.global.stop"))
}
