// Command cli runs the goose schema migrations.
//
//	cli --env=.env --dir=./migrations
package main

import (
	"os"
	"strings"

	"github.com/cshealth/reminder-gateway/internal/config"
	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/pg"
)

const defaultMigrationDir = "./migrations"

func main() {
	if err := config.Load(flagValue("--env=", ".env")); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	conf := pg.Config{URL: config.Get().DatabaseURL}
	if err := pg.Migrate(conf, flagValue("--dir=", defaultMigrationDir)); err != nil {
		logger.Error("running migrations failed", "error", err)
		os.Exit(1)
	}
}

// flagValue scans os.Args for prefix and returns its value, falling back to
// def when the flag is absent or the path does not exist.
func flagValue(prefix, def string) string {
	path := def
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			path = strings.TrimPrefix(v, prefix)
			break
		}
	}
	if _, err := os.Stat(path); err != nil {
		logger.Error("path not usable", "path", path, "error", err)
		return ""
	}
	return path
}
