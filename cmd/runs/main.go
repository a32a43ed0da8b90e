package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"imovelsync/internal/config"
	"imovelsync/internal/db"
	"imovelsync/internal/repository"
)

// Lista as execuções mais recentes do pipeline.
func main() {
	limit := flag.Int("n", 20, "Quantidade de execuções listadas")
	flag.Parse()

	cfg := config.Load()

	dbConn, err := db.New(cfg.StagingURL)
	if err != nil {
		log.Fatalf("Erro ao conectar na base de staging: %v", err)
	}

	runs, err := repository.NewRunLogRepository(dbConn)
	if err != nil {
		log.Fatalf("Erro ao preparar execucoes: %v", err)
	}

	list, err := runs.ListRecent(context.Background(), *limit)
	if err != nil {
		log.Fatalf("Erro ao listar execuções: %v", err)
	}

	if len(list) == 0 {
		fmt.Println("Nenhuma execução registrada.")
		return
	}

	fmt.Printf("%-5s %-20s %-9s %9s %10s %7s %10s %7s %7s  %s\n",
		"ID", "INÍCIO", "STATUS", "INGERIDOS", "REJEITADOS", "NOVOS", "DUPLICADOS", "SYNC", "FALHAS", "DETALHES")
	for _, run := range list {
		fmt.Printf("%-5d %-20s %-9s %9d %10d %7d %10d %7d %7d  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Ingested,
			run.Rejected,
			run.NewUnique,
			run.Duplicates,
			run.Synced,
			run.Failed,
			run.Details,
		)
	}
}
