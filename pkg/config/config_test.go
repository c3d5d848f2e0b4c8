package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.EqualValues(t, 69, cfg.Port)
	assert.EqualValues(t, 5, cfg.Timeout)
	assert.EqualValues(t, 3, cfg.Retries)
	assert.Equal(t, "classic", cfg.Codec)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.ini")
	contents := `[client]
server = 10.0.0.1
port = 1069
timeout = 2
retries = 7
codec = proto
`
	assert.Nil(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := LoadFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Server)
	assert.EqualValues(t, 1069, cfg.Port)
	assert.EqualValues(t, 2, cfg.Timeout)
	assert.EqualValues(t, 7, cfg.Retries)
	assert.Equal(t, "proto", cfg.Codec)
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.ini")
	contents := `[client]
server = 10.0.0.1
`
	assert.Nil(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := LoadFile(path)
	assert.Nil(t, err)
	assert.Equal(t, "10.0.0.1", cfg.Server)
	// Missing keys keep their defaults
	assert.EqualValues(t, 69, cfg.Port)
	assert.EqualValues(t, 5, cfg.Timeout)
	assert.EqualValues(t, 3, cfg.Retries)
	assert.Equal(t, "classic", cfg.Codec)
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile("/does/not/exist.ini")
	assert.NotNil(t, err)
	// Defaults are still usable
	assert.EqualValues(t, 69, cfg.Port)
}
