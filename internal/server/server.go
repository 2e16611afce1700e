// Package server assembles the CRUD handlers and starts the HTTP server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/cruder/internal/activity"
	"github.com/matthewbaird/cruder/internal/crud"
	"github.com/matthewbaird/cruder/internal/feed"
)

// Config holds server configuration.
type Config struct {
	Port      int
	Resources []*crud.Resource
	Hub       *feed.Hub     // optional; nil disables the event feed
	Activity  *activity.Log // optional; nil disables the activity endpoint
}

// Run starts the HTTP server with a route group per resource. It blocks
// until the context is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	for _, res := range cfg.Resources {
		h := crud.NewHandler(res, "/"+res.Schema.Name+"s")
		h.Mount(r)
	}

	if cfg.Hub != nil {
		r.Get("/events/feed", cfg.Hub.ServeHTTP)
	}
	if cfg.Activity != nil {
		r.Get("/activity", activity.NewHandler(cfg.Activity).ServeHTTP)
	}

	wrapped := crud.Recovery(crud.Logging(r))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s (%d resources registered)", addr, len(cfg.Resources))

	server := &http.Server{
		Addr:    addr,
		Handler: wrapped,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	return server.ListenAndServe()
}
