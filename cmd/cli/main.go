package main

import (
	"os"
	"strings"

	"github.com/nimasrn/freight-bids/internal/config"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/pg"
)

// main.go --env=.env --dir=./migrations --cmd=up
func main() {
	logger.SetComponent("cli")
	defer logger.Sync()

	err := config.Load(flagPath("env", ".env"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	err = pg.Migrate(pgConf, flagPath("dir", "./migrations"), flagValue("cmd"))
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func flagValue(name string) string {
	prefix := "--" + name + "="
	for _, v := range os.Args[1:] {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return ""
}

// flagPath returns the flag value when it names an existing path, else the
// fallback if that exists, else empty.
func flagPath(name, fallback string) string {
	if p := flagValue(name); p != "" {
		if _, err := os.Stat(p); err != nil {
			logger.Error("failed to open the passed path", "flag", name, "path", p, "error", err)
			return ""
		}
		return p
	}
	if _, err := os.Stat(fallback); err != nil {
		return ""
	}
	return fallback
}
