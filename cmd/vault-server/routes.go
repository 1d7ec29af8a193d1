package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/tendant/vault/pkg/vault/config"
)

func newRouter(app *config.App, logger *httplog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(app.Config.Environment)))
	r.Use(middleware.Timeout(60 * time.Second))

	handler := app.Handler()
	r.Mount("/api", handler.Routes())

	if prefix := app.Config.LocalPrefix(); prefix != "" {
		r.Handle(prefix+"/*", handler.Files())
	}

	return r
}

func corsOptions(environment string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if environment == "development" {
		opts.AllowedOrigins = []string{"http://*", "https://*"}
	}
	return opts
}
