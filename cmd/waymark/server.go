package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"waymark/internal/app/imports"
	"waymark/internal/app/lists"
	"waymark/internal/app/places"
	"waymark/internal/app/tags"
	"waymark/internal/app/users"
	"waymark/internal/httpapi"
	"waymark/internal/placesapi"
	"waymark/internal/searchservice"
	"waymark/internal/store"
	"waymark/shared/go/config"
	"waymark/shared/go/middleware"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store) http.Handler {
	// Base services
	userSvc := users.New(dataStore)
	placesSvc := places.New(dataStore)
	tagsSvc := tags.New(dataStore)
	listsSvc := lists.New(dataStore, cfg.Security.ShareTokenSecret)

	// Services backed by the external places lookup
	lookup := newLookupClient(cfg)
	importSvc := imports.New(importStore{dataStore}, lookup)
	searchSvc := searchservice.NewService(dataStore, lookup)

	api := httpapi.New(userSvc, placesSvc, tagsSvc, listsSvc, importSvc, searchSvc)

	handler := middleware.Recovery()(api.Routes())
	handler = middleware.RequestLogging()(handler)
	return withCORS(cfg.CORS.AllowedOrigins, handler)
}

func newLookupClient(cfg *config.Config) placesapi.Client {
	if cfg.Places.APIKey == "" {
		log.Info().Msg("Places API key not provided, import enrichment and suggestions disabled")
		return nil
	}
	return placesapi.NewGoogleClient(cfg.Places.APIKey, cfg.Places.BaseURL)
}

// importStore narrows *store.Store to the interface the import pipeline
// consumes; its BeginImport returns the Batch interface rather than the
// concrete transaction type.
type importStore struct {
	*store.Store
}

func (s importStore) BeginImport(ctx context.Context) (imports.Batch, error) {
	return s.Store.BeginImport(ctx)
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
