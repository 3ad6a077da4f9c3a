package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	coreURL := getEnv("CORE_API_URL", "http://localhost:8080")
	searchURL := getEnv("SEARCH_API_URL", "http://localhost:8081")
	port := getEnv("PORT", "8000")

	coreProxy, err := newProxy(coreURL)
	if err != nil {
		return fmt.Errorf("core proxy: %w", err)
	}
	searchProxy, err := newProxy(searchURL)
	if err != nil {
		return fmt.Errorf("search proxy: %w", err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}).Methods(http.MethodGet)

	// The public search endpoint is served by its own process; everything
	// else under /api goes to the core API.
	r.PathPrefix("/api/v1/search").Handler(searchProxy)
	r.PathPrefix("/api/").Handler(coreProxy)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Gateway listening on %s (core=%s search=%s)", server.Addr, coreURL, searchURL)
	return server.ListenAndServe()
}

func newProxy(rawURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", rawURL, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy %s %s: %v", r.Method, r.URL.Path, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"upstream unavailable"}`)
	}
	return proxy, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
