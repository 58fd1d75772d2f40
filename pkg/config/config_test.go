package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Sessions.DefaultCapacity)
	assert.Equal(t, "skateflow:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Media.SignedURLTTL)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp"}, cfg.Media.AllowedMIMEs)
	assert.Equal(t, "Bruno Oliveira", cfg.Instructor.DefaultName)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestFromViperRejectsUnknownBackend(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_BACKEND", "localstorage")

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViperFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DEFAULT_SESSION_CAPACITY", 0)
	v.Set("MEDIA_SIGNED_URL_TTL", "soon")
	v.Set("STORE_BACKEND", " Redis ")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sessions.DefaultCapacity)
	assert.Equal(t, 24*time.Hour, cfg.Media.SignedURLTTL)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
