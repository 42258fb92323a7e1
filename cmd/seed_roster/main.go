package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/moodlog-backend/internal/app"
	"github.com/yungbote/moodlog-backend/internal/data/db"
	"github.com/yungbote/moodlog-backend/internal/data/repos"
	types "github.com/yungbote/moodlog-backend/internal/domain"
	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/logger"
)

type rosterFile struct {
	Users []*types.User `yaml:"users"`
}

func main() {
	var (
		path   = flag.String("file", "config/roster.yaml", "roster yaml with a users list")
		dryRun = flag.Bool("dry-run", false, "parse and print the roster without writing")
	)
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	roster, err := loadRoster(*path)
	if err != nil {
		log.Error("roster load failed", "path", *path, "error", err)
		os.Exit(1)
	}
	if *dryRun {
		for _, u := range roster.Users {
			fmt.Printf("%s\t%s\t%s\n", u.Username, u.DisplayName, u.Emoji)
		}
		return
	}

	cfg := app.LoadConfig(log)
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer svc.Close()
	if err := svc.AutoMigrateAll(); err != nil {
		log.Error("automigrate failed", "error", err)
		os.Exit(1)
	}

	saved, err := repos.NewUserRepo(svc.DB(), log).Upsert(dbctx.Context{Ctx: context.Background()}, roster.Users)
	if err != nil {
		log.Error("roster upsert failed", "error", err)
		os.Exit(1)
	}
	log.Info("roster seeded", "users", len(saved))
}

func loadRoster(path string) (rosterFile, error) {
	var out rosterFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	seen := map[string]bool{}
	for i, u := range out.Users {
		if u == nil || strings.TrimSpace(u.Username) == "" {
			return out, fmt.Errorf("users[%d]: username is required", i)
		}
		key := strings.ToLower(strings.TrimSpace(u.Username))
		if seen[key] {
			return out, fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		seen[key] = true
		if strings.TrimSpace(u.DisplayName) == "" {
			u.DisplayName = u.Username
		}
	}
	return out, nil
}
