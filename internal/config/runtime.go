package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/gemibot/pkg/log"
)

func GetRuntimePath() string {
	path := os.Getenv("GEMI_RUNTIME_PATH")
	if path == "" {
		path = ".gemibot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func GetEnvPath() string {
	return filepath.Join(GetRuntimePath(), ".env")
}

func GetDatabasePath() string {
	return filepath.Join(GetRuntimePath(), "gemibot.db")
}

// LoadEnvFile loads the runtime .env into the process environment.
// Variables already set in the environment win.
func LoadEnvFile(ctx context.Context) {
	path := GetEnvPath()
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.FromCtx(ctx).Debug().Str("path", path).Msg("no env file, using process environment")
			return
		}
		log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to load env file")
	}
}
