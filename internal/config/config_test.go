package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_DB", "MINIO_BUCKET", "MINIO_USE_SSL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "music_app", cfg.MongoDB)
	assert.Equal(t, "avatars", cfg.MinioBucket)
	assert.False(t, cfg.MinioUseSSL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.True(t, cfg.MinioUseSSL)
}
