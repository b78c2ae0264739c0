package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/isp-kanban/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "isp_kanban", cfg.DBName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/board.db")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/board.db", cfg.DBPath)
}

func TestLoadClient_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("KANBAN_API_URL", "")
	t.Setenv("KANBAN_TIMEOUT", "")

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "kanban.log", cfg.LogFile)
	assert.Equal(t, models.Stages, cfg.StageOrder())
}

func TestLoadClient_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://kanban.internal:9000\ntimeout: 3s\nstages: buttons\n"), 0o600))
	t.Setenv("KANBAN_API_URL", "")
	t.Setenv("KANBAN_TIMEOUT", "5s")

	cfg, err := LoadClient(path)

	require.NoError(t, err)
	assert.Equal(t, "http://kanban.internal:9000", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, models.ButtonStages, cfg.StageOrder())
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative url", map[string]string{"KANBAN_API_URL": "localhost:8000"}},
		{"bad timeout", map[string]string{"KANBAN_TIMEOUT": "soon"}},
		{"bad stages", map[string]string{"KANBAN_STAGES": "all"}},
		{"bad log level", map[string]string{"KANBAN_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml"))
			assert.Error(t, err)
		})
	}
}
