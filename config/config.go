// Package config loads the pipeline configuration from the process
// environment, optionally layered under a .env file. Definitions in the
// file always overwrite values already present in the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults matching the source dataset this archive was built from.
const (
	DefaultUser    = "cauemborim"
	DefaultDataDir = "."
)

// DefaultLists are the curated Trakt lists the export pulls from.
var DefaultLists = []string{
	"arquivo-dos-desenhos-da-infancia",
	"arquivo-dos-desenhos-da-infancia-2",
}

type Config struct {
	TraktClientID string
	TMDBAPIKey    string

	User    string
	Lists   []string
	DataDir string
}

// Load reads envPath (if it exists) over the process environment and
// builds the configuration. Credential checks are deferred to the
// commands that need them, so read-only stages run without keys.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			// Overload, not Load: the file wins over the environment.
			if err := godotenv.Overload(envPath); err != nil {
				return nil, fmt.Errorf("parse %s: %w", envPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		TraktClientID: strings.TrimSpace(os.Getenv("TRAKT_CLIENT_ID")),
		TMDBAPIKey:    strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		User:          DefaultUser,
		Lists:         DefaultLists,
		DataDir:       DefaultDataDir,
	}
	return cfg, nil
}

// RequireTrakt fails when the Trakt credential is absent.
func (c *Config) RequireTrakt() error {
	if c.TraktClientID == "" {
		return fmt.Errorf("TRAKT_CLIENT_ID is not set; add it to the .env file")
	}
	return nil
}

// RequireTMDB fails when the TMDB credential is absent.
func (c *Config) RequireTMDB() error {
	if c.TMDBAPIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is not set; add it to the .env file")
	}
	return nil
}
