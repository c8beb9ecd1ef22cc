package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "github.com/aidengindin/ownhealth/internal/adapter/http"
	"github.com/aidengindin/ownhealth/internal/adapter/postgres"
	"github.com/aidengindin/ownhealth/internal/app"
	"github.com/aidengindin/ownhealth/internal/config"
	"github.com/aidengindin/ownhealth/internal/provider"
	"github.com/aidengindin/ownhealth/internal/provider/garmin"
)

func main() {
	cfgDir := env("CONFIG_DIR", "config")
	cfg, err := config.Load(cfgDir)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	credRepo := postgres.NewCredentialRepo(db, cfg.CredentialsKey)
	providers := []provider.DataProvider{garmin.New()}
	ingestSvc := app.NewIngestService(db, credRepo, providers)
	metricsSvc := app.NewMetricsService(db)

	h := adapthttp.New(metricsSvc, ingestSvc).Handler()
	addr := cfg.Server.Addr()
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
