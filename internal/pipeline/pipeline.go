package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"imovelsync/internal/dedup"
	"imovelsync/internal/model"
	"imovelsync/internal/normalizer"
	"imovelsync/internal/observability"
	"imovelsync/internal/repository"
	"imovelsync/internal/syncer"
)

// Source é qualquer origem de registros brutos: portal raspado, API ou
// arquivo exportado por uma coleta anterior. Name identifica a origem
// nos logs e no resumo da execução.
type Source interface {
	Fetch(ctx context.Context) ([]model.RawRecord, error)
	Name() string
}

// Pipeline encadeia as etapas de uma execução completa: coleta,
// normalização, deduplicação e transferência, fechando com uma linha
// de resumo em execucoes.
type Pipeline struct {
	Source      Source
	Normalizer  *normalizer.Normalizer
	Dedup       *dedup.Deduplicator
	Sync        *syncer.Engine
	Staging     repository.StagingStore
	Destination repository.DestinationStore
	Runs        repository.RunLogStore
}

// RunOnce executa o pipeline de ponta a ponta e grava o resumo da
// execução. Indisponibilidade das bases aborta a execução inteira;
// problemas em registros individuais são isolados pelas etapas.
func (p *Pipeline) RunOnce(ctx context.Context) (model.RunLog, error) {
	run := model.RunLog{StartedAt: time.Now()}

	if err := p.Staging.Ping(ctx); err != nil {
		return p.abort(ctx, run, fmt.Errorf("staging indisponível: %w", err))
	}
	if err := p.Destination.Ping(ctx); err != nil {
		return p.abort(ctx, run, fmt.Errorf("destino indisponível: %w", err))
	}

	raw, err := p.Source.Fetch(ctx)
	if err != nil {
		return p.abort(ctx, run, fmt.Errorf("coleta: %w", err))
	}
	run.Ingested = len(raw)
	log.Printf("[pipeline] %d registros brutos recebidos de %s", len(raw), p.Source.Name())

	listings := make([]model.Listing, 0, len(raw))
	for i, r := range raw {
		l, err := p.Normalizer.Normalize(r)
		if err != nil {
			run.Rejected++
			log.Printf("[pipeline] registro %d rejeitado: %v", i, err)
			continue
		}
		listings = append(listings, l)
	}

	records, err := p.Dedup.Process(ctx, listings)
	if err != nil {
		return p.abort(ctx, run, fmt.Errorf("dedup: %w", err))
	}
	for _, rec := range records {
		switch rec.DedupState {
		case model.DedupUnique:
			run.NewUnique++
		case model.DedupDuplicate:
			run.Duplicates++
		}
	}
	skipped := len(listings) - len(records)

	report, err := p.Sync.SyncPending(ctx)
	if err != nil {
		return p.abort(ctx, run, fmt.Errorf("sync: %w", err))
	}
	run.Synced = report.Synced
	run.Failed = report.Failed

	run.FinishedAt = time.Now()
	run.Status = model.RunSuccess
	if run.Failed > 0 || skipped > 0 {
		run.Status = model.RunPartial
		run.Details = fmt.Sprintf("%d falhas de sync, %d registros pulados por erro de staging", run.Failed, skipped)
	}

	observability.AnunciosIngeridos.Add(float64(run.Ingested))
	observability.AnunciosRejeitados.Add(float64(run.Rejected))
	observability.AnunciosDuplicados.Add(float64(run.Duplicates))
	observability.ExecucaoDuracao.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err := p.Runs.Append(ctx, run); err != nil {
		log.Printf("[pipeline] erro ao gravar resumo da execução: %v", err)
	}

	log.Printf("[pipeline] execução %s: %d ingeridos, %d rejeitados, %d novos, %d duplicados, %d sincronizados, %d falhas",
		run.Status, run.Ingested, run.Rejected, run.NewUnique, run.Duplicates, run.Synced, run.Failed)
	return run, nil
}

func (p *Pipeline) abort(ctx context.Context, run model.RunLog, cause error) (model.RunLog, error) {
	run.FinishedAt = time.Now()
	run.Status = model.RunError
	run.Details = cause.Error()

	if err := p.Runs.Append(ctx, run); err != nil {
		log.Printf("[pipeline] erro ao gravar resumo da execução abortada: %v", err)
	}
	return run, cause
}
