package repository

import (
	"context"
	"database/sql"
	"fmt"

	"imovelsync/internal/model"
)

// RunLogRepository guarda o histórico das execuções do pipeline na mesma
// base do staging, uma linha por execução.
type RunLogRepository struct {
	DB *sql.DB
}

func NewRunLogRepository(db *sql.DB) (*RunLogRepository, error) {
	r := &RunLogRepository{DB: db}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("execucoes: migrate: %w", err)
	}
	return r, nil
}

func (r *RunLogRepository) migrate() error {
	_, err := r.DB.Exec(`
		CREATE TABLE IF NOT EXISTS execucoes (
			id            BIGSERIAL PRIMARY KEY,
			iniciado_em   TIMESTAMPTZ NOT NULL,
			finalizado_em TIMESTAMPTZ NOT NULL,
			ingeridos     INT NOT NULL DEFAULT 0,
			rejeitados    INT NOT NULL DEFAULT 0,
			novos_unicos  INT NOT NULL DEFAULT 0,
			duplicados    INT NOT NULL DEFAULT 0,
			sincronizados INT NOT NULL DEFAULT 0,
			falhas        INT NOT NULL DEFAULT 0,
			status        TEXT NOT NULL,
			detalhes      TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

func (r *RunLogRepository) Append(ctx context.Context, run model.RunLog) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO execucoes
		(iniciado_em, finalizado_em, ingeridos, rejeitados, novos_unicos,
		 duplicados, sincronizados, falhas, status, detalhes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.StartedAt, run.FinishedAt, run.Ingested, run.Rejected,
		run.NewUnique, run.Duplicates, run.Synced, run.Failed,
		run.Status, run.Details)
	if err != nil {
		return fmt.Errorf("execucoes: insert: %w", err)
	}
	return nil
}

func (r *RunLogRepository) ListRecent(ctx context.Context, limit int) ([]model.RunLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, iniciado_em, finalizado_em, ingeridos, rejeitados,
		       novos_unicos, duplicados, sincronizados, falhas, status, detalhes
		FROM execucoes
		ORDER BY iniciado_em DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("execucoes: select: %w", err)
	}
	defer rows.Close()

	var runs []model.RunLog
	for rows.Next() {
		var run model.RunLog
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.Ingested, &run.Rejected, &run.NewUnique, &run.Duplicates,
			&run.Synced, &run.Failed, &run.Status, &run.Details); err != nil {
			return nil, fmt.Errorf("execucoes: scan: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
