package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"imovelsync/internal/model"
	"imovelsync/internal/observability"
	"imovelsync/internal/repository"
)

const maxWorkers = 8

// Engine transfere para o destino os anúncios únicos que ainda não
// foram sincronizados. Cada anúncio é tratado isoladamente: uma falha
// marca só aquela linha como FAILED e os demais seguem, e a linha com
// falha volta a ser candidata na próxima execução.
type Engine struct {
	Staging     repository.StagingStore
	Destination repository.DestinationStore
	Workers     int
	Timeout     time.Duration
}

func New(staging repository.StagingStore, dest repository.DestinationStore, workers int, timeout time.Duration) *Engine {
	return &Engine{Staging: staging, Destination: dest, Workers: workers, Timeout: timeout}
}

// SyncPending seleciona as linhas UNIQUE com sync PENDING ou FAILED e
// tenta o upsert no destino com um pool de workers.
func (e *Engine) SyncPending(ctx context.Context) (model.SyncReport, error) {
	pending, err := e.Staging.ListPendingSync(ctx)
	if err != nil {
		return model.SyncReport{}, fmt.Errorf("sync: listar pendentes: %w", err)
	}
	if len(pending) == 0 {
		log.Println("[sync] nenhum anúncio pendente")
		return model.SyncReport{}, nil
	}

	workers := e.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = maxWorkers
	}

	jobs := make(chan model.StagingRecord)
	results := make(chan bool)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				results <- e.transfer(ctx, rec)
			}
		}()
	}

	go func() {
		for _, rec := range pending {
			jobs <- rec
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var report model.SyncReport
	for ok := range results {
		if ok {
			report.Synced++
		} else {
			report.Failed++
		}
	}

	log.Printf("[sync] transferência concluída: %d sincronizados, %d falhas", report.Synced, report.Failed)
	return report, nil
}

func (e *Engine) transfer(ctx context.Context, rec model.StagingRecord) bool {
	opCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	if err := e.Destination.Upsert(opCtx, rec.Listing); err != nil {
		log.Printf("[sync] falha ao transferir %s: %v", rec.ID, err)
		if markErr := e.Staging.MarkFailed(ctx, rec.ID); markErr != nil {
			log.Printf("[sync] erro ao marcar falha de %s: %v", rec.ID, markErr)
		}
		observability.AnunciosComFalha.Inc()
		return false
	}

	if err := e.Staging.MarkSynced(ctx, rec.ID); err != nil {
		// O destino já recebeu o anúncio; sem a marcação a linha volta
		// na próxima execução e o upsert idempotente absorve a repetição.
		log.Printf("[sync] erro ao marcar %s como sincronizado: %v", rec.ID, err)
		return false
	}

	observability.AnunciosSincronizados.Inc()
	return true
}
