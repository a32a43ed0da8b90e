package main

import (
	"context"
	"flag"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"imovelsync/internal/config"
	"imovelsync/internal/db"
	"imovelsync/internal/dedup"
	"imovelsync/internal/extractor"
	"imovelsync/internal/normalizer"
	"imovelsync/internal/observability"
	"imovelsync/internal/pipeline"
	"imovelsync/internal/repository"
	"imovelsync/internal/scraper"
	"imovelsync/internal/syncer"
)

// go run cmd/pipeline/main.go -origem=arquivo -entrada=dados/coleta.jsonl
// go run cmd/pipeline/main.go -origem=portal
// go run cmd/pipeline/main.go -dry -origem=arquivo
func main() {
	origem := flag.String("origem", "", "Origem dos registros: 'arquivo', 'portal', 'api' ou 'llm'")
	entrada := flag.String("entrada", "", "Arquivo JSONL de entrada no modo 'arquivo'")
	dry := flag.Bool("dry", false, "Roda com bases em memória, sem tocar Postgres")
	flag.Parse()

	cfg := config.Load()

	observability.Start(cfg.MetricsPort)

	ctx := context.Background()

	var (
		staging repository.StagingStore
		destino repository.DestinationStore
		runs    repository.RunLogStore
	)

	if *dry {
		log.Println("Modo dry-run: usando bases em memória")
		staging = repository.NewMemoryStaging()
		destino = repository.NewMemoryDestination()
		runs = repository.NewMemoryRunLog()
	} else {
		dbConn, err := db.New(cfg.StagingURL)
		if err != nil {
			log.Fatalf("Erro ao conectar na base de staging: %v", err)
		}

		stagingRepo, err := repository.NewStagingRepository(dbConn)
		if err != nil {
			log.Fatalf("Erro ao preparar staging: %v", err)
		}
		staging = stagingRepo

		runsRepo, err := repository.NewRunLogRepository(dbConn)
		if err != nil {
			log.Fatalf("Erro ao preparar execucoes: %v", err)
		}
		runs = runsRepo

		pool, err := db.NewPool(ctx, cfg.DestinationURL)
		if err != nil {
			log.Fatalf("Não foi possível criar o pool do destino: %v", err)
		}
		defer pool.Close()

		destinoRepo, err := repository.NewDestinationRepository(ctx, pool)
		if err != nil {
			log.Fatalf("Erro ao preparar destino: %v", err)
		}
		destino = destinoRepo
	}

	modo := *origem
	if modo == "" {
		modo = cfg.SourceMode
	}
	arquivo := *entrada
	if arquivo == "" {
		arquivo = cfg.InputFile
	}

	var source pipeline.Source
	switch modo {
	case "portal":
		source = &scraper.PortalWeb{
			URL:        cfg.PortalURL,
			Fonte:      cfg.Fonte,
			RenderWait: time.Duration(cfg.RenderWait) * time.Second,
			Tentativas: cfg.Tentativas,
		}
	case "api":
		source = &scraper.PortalAPI{BaseURL: cfg.PortalURL, Fonte: cfg.Fonte}
	case "llm":
		if cfg.OpenAIKey == "" {
			log.Fatal("OPENAI_API_KEY é obrigatória na origem llm")
		}
		source = &extractor.PortalLLM{
			Extractor:  extractor.New(openai.NewClient(cfg.OpenAIKey)),
			URL:        cfg.PortalURL,
			Fonte:      cfg.Fonte,
			RenderWait: time.Duration(cfg.RenderWait) * time.Second,
		}
	default:
		source = &scraper.FileSource{Path: arquivo, Fonte: cfg.Fonte}
	}

	p := &pipeline.Pipeline{
		Source:      source,
		Normalizer:  normalizer.New(),
		Dedup:       dedup.New(staging),
		Sync:        syncer.New(staging, destino, cfg.SyncWorkers, time.Duration(cfg.SyncTimeoutSec)*time.Second),
		Staging:     staging,
		Destination: destino,
		Runs:        runs,
	}

	run, err := p.RunOnce(ctx)
	if err != nil {
		log.Fatalf("Execução abortada: %v", err)
	}

	log.Printf("Pipeline finalizado com status %s", run.Status)
}
