package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.OperationTimeout)
	assert.Equal(t, 5000, cfg.MaxMessageBytes)
	assert.False(t, cfg.ExcludeJoinerFromRecipients)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/chat")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("OPERATION_TIMEOUT", "750ms")
	t.Setenv("EXCLUDE_JOINER_FROM_RECIPIENTS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@db:5432/chat", cfg.DatabaseDSN)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.OperationTimeout)
	assert.True(t, cfg.ExcludeJoinerFromRecipients)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "privileged port", env: map[string]string{"PORT": "80"}},
		{name: "non numeric port", env: map[string]string{"PORT": "eighty"}},
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "mongo"}},
		{name: "postgres without dsn in production", env: map[string]string{"ENVIRONMENT": "production", "STORE_DRIVER": "postgres"}},
		{name: "zero history", env: map[string]string{"HISTORY_LIMIT": "0"}},
		{name: "negative timeout", env: map[string]string{"OPERATION_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "development")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_PostgresDevelopmentDefaultDSN(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Contains(t, cfg.DatabaseDSN, "roomchat")
}
