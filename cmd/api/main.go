package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"medication-tracker/internal/adapters/auth/idp"
	"medication-tracker/internal/adapters/medinfo/gemini"
	"medication-tracker/internal/platform/logger"
	"medication-tracker/internal/ports/auth"
	"medication-tracker/internal/ports/medinfo"
	"medication-tracker/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Verifier opcional: sin IDP_BASE_URL/IDP_API_KEY corre en modo dev
	// (header X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := strings.TrimSpace(os.Getenv("IDP_BASE_URL")); baseURL != "" {
		client := idp.NewClient(idp.Config{
			BaseURL:      baseURL,
			APIKey:       os.Getenv("IDP_API_KEY"),
			APIKeyHeader: os.Getenv("IDP_API_KEY_HEADER"),
		})
		if client.IsConfigured() {
			verifier = idp.NewVerifier(client)
			log.Info("idp verifier enabled", nil)
		} else {
			log.Warn("idp config incomplete, running in dev auth mode", nil)
		}
	}

	// Proveedor de info de medicamentos opcional: sin GEMINI_API_KEY las
	// rutas de interacciones responden 503.
	var provider medinfo.Provider
	if apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); apiKey != "" {
		client := gemini.NewClient(gemini.Config{
			APIKey: apiKey,
			Model:  os.Getenv("GEMINI_MODEL"),
		})
		provider = gemini.NewProvider(client, log)
		log.Info("gemini medinfo provider enabled", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		MedInfo:      provider,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // las rutas de interacciones llaman a Gemini
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
