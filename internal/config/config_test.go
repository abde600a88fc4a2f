package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)

	mv := manager.GetMyVariantConfig()
	assert.Equal(t, "https://myvariant.info/v1", mv.BaseURL)
	assert.Equal(t, 30*time.Second, mv.Timeout)
	assert.Equal(t, 3, mv.MaxRetries)
	assert.Equal(t, 2*time.Second, mv.RetryWaitMin)
	assert.Equal(t, 10*time.Second, mv.RetryWaitMax)
	assert.Equal(t, 10, mv.RateLimit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, manager.Validate())
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr string
	}{
		{name: "invalid port", key: "server.port", value: -1, wantErr: "invalid server port"},
		{name: "missing base url", key: "external_api.myvariant.base_url", value: "", wantErr: "base URL is required"},
		{name: "zero retries", key: "external_api.myvariant.max_retries", value: 0, wantErr: "max retries"},
		{name: "retry wait inverted", key: "external_api.myvariant.retry_wait_min", value: "20s", wantErr: "exceeds max"},
		{name: "bad log level", key: "logging.level", value: "verbose", wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			manager, err := NewManager()
			require.NoError(t, err)

			viper.Set(tt.key, tt.value)
			require.NoError(t, manager.Reload())

			err = manager.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManager_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("TUMORBOARD_SERVER_PORT", "9090")
	t.Setenv("TUMORBOARD_EXTERNAL_API_MYVARIANT_MAX_RETRIES", "5")

	manager, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 9090, manager.GetServerConfig().Port)
	assert.Equal(t, 5, manager.GetMyVariantConfig().MaxRetries)
	assert.NoError(t, manager.Validate())
}
