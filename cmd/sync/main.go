package main

import (
	"context"
	"log"
	"time"

	"imovelsync/internal/config"
	"imovelsync/internal/db"
	"imovelsync/internal/observability"
	"imovelsync/internal/repository"
	"imovelsync/internal/syncer"
)

// Retransfere para o destino o que ficou PENDING ou FAILED no staging,
// sem rodar coleta nem dedup.
func main() {
	cfg := config.Load()

	observability.Start(cfg.MetricsPort)

	ctx := context.Background()

	dbConn, err := db.New(cfg.StagingURL)
	if err != nil {
		log.Fatalf("Erro ao conectar na base de staging: %v", err)
	}

	staging, err := repository.NewStagingRepository(dbConn)
	if err != nil {
		log.Fatalf("Erro ao preparar staging: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DestinationURL)
	if err != nil {
		log.Fatalf("Não foi possível criar o pool do destino: %v", err)
	}
	defer pool.Close()

	destino, err := repository.NewDestinationRepository(ctx, pool)
	if err != nil {
		log.Fatalf("Erro ao preparar destino: %v", err)
	}

	engine := syncer.New(staging, destino, cfg.SyncWorkers, time.Duration(cfg.SyncTimeoutSec)*time.Second)
	report, err := engine.SyncPending(ctx)
	if err != nil {
		log.Fatalf("Erro na sincronização: %v", err)
	}

	total, err := destino.Count(ctx)
	if err != nil {
		log.Printf("Erro ao contar anúncios no destino: %v", err)
	} else {
		log.Printf("Destino com %d anúncios únicos", total)
	}

	log.Printf("Sincronização finalizada: %d transferidos, %d falhas", report.Synced, report.Failed)
}
