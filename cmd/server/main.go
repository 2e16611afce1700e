package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/cruder/internal/activity"
	"github.com/matthewbaird/cruder/internal/crud"
	"github.com/matthewbaird/cruder/internal/eventbus"
	"github.com/matthewbaird/cruder/internal/feed"
	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/seed"
	"github.com/matthewbaird/cruder/internal/server"
	"github.com/matthewbaird/cruder/internal/store"
	"github.com/matthewbaird/cruder/internal/view"
)

func main() {
	// Optional .env for local development. Missing files are fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "file:cruder.db?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		log.Fatalf("enabling foreign keys: %v", err)
	}

	schemaDir := os.Getenv("SCHEMA_DIR")
	if schemaDir == "" {
		schemaDir = "schemas"
	}
	resources, err := schema.LoadDir(schemaDir)
	if err != nil {
		log.Fatalf("loading schemas from %s: %v", schemaDir, err)
	}

	bus := eventbus.New(256)
	bus.Subscribe("log", eventbus.NewLogConsumer())
	hub := feed.NewHub()
	bus.Subscribe("feed", hub)
	activityLog := activity.NewLog(activity.DefaultCapacity)
	bus.Subscribe("activity", activityLog)
	bus.Start(ctx)
	defer bus.Stop()

	registry := schema.NewRegistry()
	cfg := view.Config{
		Framework:    os.Getenv("CSS_FRAMEWORK"),
		ReadonlyMode: os.Getenv("READONLY_MODE") == "true",
	}

	var crudResources []*crud.Resource
	for _, res := range resources {
		if err := registry.Register(res); err != nil {
			log.Fatalf("registering %s: %v", res.Name, err)
		}

		st, err := store.NewSQLStore(ctx, db, res)
		if err != nil {
			log.Fatalf("preparing store for %s: %v", res.Name, err)
		}
		if os.Getenv("SEED_DEMO") == "true" {
			if err := seed.Demo(ctx, res, st, 30); err != nil {
				log.Fatalf("seeding %s: %v", res.Name, err)
			}
		}

		resCfg := cfg
		resCfg.SearchFields = searchableFields(res)
		cr, err := crud.NewResource(res, resCfg, st, bus)
		if err != nil {
			log.Fatalf("configuring %s: %v", res.Name, err)
		}
		crudResources = append(crudResources, cr)
		log.Printf("resource %s: %d fields, search over %v", res.Name, len(res.Fields()), resCfg.SearchFields)
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	if err := server.Run(ctx, server.Config{
		Port:      port,
		Resources: crudResources,
		Hub:       hub,
		Activity:  activityLog,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// searchableFields picks the text fields as the default search set.
func searchableFields(res *schema.Resource) []string {
	var fields []string
	for _, fd := range res.Fields() {
		if fd.Type == schema.TypeText || fd.Type == schema.TypeLongText {
			fields = append(fields, fd.Name)
		}
	}
	return fields
}
