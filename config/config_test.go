package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	t.Setenv("TRAKT_CLIENT_ID", "from-env")
	t.Setenv("TMDB_API_KEY", "")

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"# credentials\nTRAKT_CLIENT_ID=from-file\nTMDB_API_KEY=tmdb-key\n",
	), 0o644))

	cfg, err := Load(envPath)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TraktClientID)
	assert.Equal(t, "tmdb-key", cfg.TMDBAPIKey)
	assert.Equal(t, DefaultUser, cfg.User)
	assert.Equal(t, DefaultLists, cfg.Lists)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoad_MissingFileFallsBackToEnvironment(t *testing.T) {
	t.Setenv("TRAKT_CLIENT_ID", " padded-env ")
	t.Setenv("TMDB_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, "padded-env", cfg.TraktClientID)
	assert.Empty(t, cfg.TMDBAPIKey)
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.RequireTrakt())
	require.Error(t, cfg.RequireTMDB())
	assert.Contains(t, cfg.RequireTrakt().Error(), "TRAKT_CLIENT_ID")
	assert.Contains(t, cfg.RequireTMDB().Error(), "TMDB_API_KEY")

	cfg = &Config{TraktClientID: "a", TMDBAPIKey: "b"}
	assert.NoError(t, cfg.RequireTrakt())
	assert.NoError(t, cfg.RequireTMDB())
}
