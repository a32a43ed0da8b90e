package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"imovelsync/internal/model"
)

// StagingRepository guarda os anúncios estacionados no Postgres local,
// uma linha por StagingRecord, com a chave exata protegida por UNIQUE.
type StagingRepository struct {
	DB *sql.DB
}

func NewStagingRepository(db *sql.DB) (*StagingRepository, error) {
	r := &StagingRepository{DB: db}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("staging: migrate: %w", err)
	}
	return r, nil
}

func (r *StagingRepository) migrate() error {
	_, err := r.DB.Exec(`
		CREATE TABLE IF NOT EXISTS anuncios_staging (
			id                UUID PRIMARY KEY,
			fingerprint_exact TEXT NOT NULL UNIQUE,
			fingerprint_fuzzy TEXT NOT NULL,
			url_anuncio       TEXT,
			titulo            TEXT,
			endereco          TEXT,
			bairro            TEXT,
			cidade            TEXT,
			preco             NUMERIC,
			area              NUMERIC,
			quartos           INT,
			fonte             TEXT NOT NULL DEFAULT '',
			coletado_em       TIMESTAMPTZ NOT NULL,
			dedup_state       TEXT NOT NULL DEFAULT 'UNIQUE',
			duplicate_of      UUID,
			sync_state        TEXT NOT NULL DEFAULT 'PENDING',
			criado_em         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			atualizado_em     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_anuncios_staging_fuzzy ON anuncios_staging (fingerprint_fuzzy);
		CREATE INDEX IF NOT EXISTS idx_anuncios_staging_sync  ON anuncios_staging (sync_state);
	`)
	return err
}

const stagingCols = `
	id, fingerprint_exact, fingerprint_fuzzy, url_anuncio, titulo, endereco,
	bairro, cidade, preco, area, quartos, fonte, coletado_em,
	dedup_state, COALESCE(duplicate_of::text, ''), sync_state, criado_em, atualizado_em`

func (r *StagingRepository) InsertIfAbsent(ctx context.Context, rec model.StagingRecord) (model.StagingRecord, bool, error) {
	l := rec.Listing
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO anuncios_staging
		(id, fingerprint_exact, fingerprint_fuzzy, url_anuncio, titulo, endereco,
		 bairro, cidade, preco, area, quartos, fonte, coletado_em, dedup_state, sync_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (fingerprint_exact) DO NOTHING
		RETURNING criado_em, atualizado_em
	`, rec.ID, l.FingerprintExact, l.FingerprintFuzzy,
		nullText(l.SourceURL), nullText(l.Title), nullText(l.Address),
		nullText(l.Neighborhood), nullText(l.City),
		nullFloat(l.Price), nullFloat(l.Area), nullInt(l.Rooms),
		l.Source, l.CollectedAt, rec.DedupState, rec.SyncState,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// Outra execução (ou outro worker) estacionou a mesma chave antes.
		existing, ferr := r.FindByExact(ctx, l.FingerprintExact)
		if ferr != nil {
			return model.StagingRecord{}, false, ferr
		}
		if existing == nil {
			return model.StagingRecord{}, false, fmt.Errorf("staging: conflito sem linha para %s", l.FingerprintExact)
		}
		return *existing, false, nil
	}
	if err != nil {
		return model.StagingRecord{}, false, fmt.Errorf("staging: insert: %w", err)
	}
	return rec, true, nil
}

func (r *StagingRepository) FindByExact(ctx context.Context, fp string) (*model.StagingRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+stagingCols+`
		FROM anuncios_staging
		WHERE fingerprint_exact = $1
	`, fp)
	return scanStaging(row)
}

// FindByFuzzy devolve o registro mais antigo com a chave fuzzy: quando há
// mais de um candidato, vence quem foi estacionado primeiro.
func (r *StagingRepository) FindByFuzzy(ctx context.Context, fp string) (*model.StagingRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+stagingCols+`
		FROM anuncios_staging
		WHERE fingerprint_fuzzy = $1
		ORDER BY criado_em ASC, id ASC
		LIMIT 1
	`, fp)
	return scanStaging(row)
}

func (r *StagingRepository) FillForward(ctx context.Context, id string, l model.Listing) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE anuncios_staging SET
			url_anuncio   = COALESCE(url_anuncio, $2),
			titulo        = COALESCE(titulo, $3),
			endereco      = COALESCE(endereco, $4),
			bairro        = COALESCE(bairro, $5),
			cidade        = COALESCE(cidade, $6),
			preco         = COALESCE(preco, $7),
			area          = COALESCE(area, $8),
			quartos       = COALESCE(quartos, $9),
			atualizado_em = NOW()
		WHERE id = $1
	`, id,
		nullText(l.SourceURL), nullText(l.Title), nullText(l.Address),
		nullText(l.Neighborhood), nullText(l.City),
		nullFloat(l.Price), nullFloat(l.Area), nullInt(l.Rooms))
	if err != nil {
		return fmt.Errorf("staging: fill-forward %s: %w", id, err)
	}
	return nil
}

func (r *StagingRepository) ListPendingSync(ctx context.Context) ([]model.StagingRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+stagingCols+`
		FROM anuncios_staging
		WHERE dedup_state = 'UNIQUE' AND sync_state IN ('PENDING', 'FAILED')
		ORDER BY criado_em ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("staging: list pendentes: %w", err)
	}
	defer rows.Close()

	var out []model.StagingRecord
	for rows.Next() {
		rec, err := scanStaging(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *StagingRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE anuncios_staging
		SET sync_state = 'SYNCED', atualizado_em = NOW()
		WHERE id = $1
	`, id)
	return err
}

// MarkFailed nunca rebaixa um registro já SYNCED.
func (r *StagingRepository) MarkFailed(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE anuncios_staging
		SET sync_state = 'FAILED', atualizado_em = NOW()
		WHERE id = $1 AND sync_state <> 'SYNCED'
	`, id)
	return err
}

func (r *StagingRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStaging(row scanner) (*model.StagingRecord, error) {
	var (
		rec      model.StagingRecord
		url      sql.NullString
		titulo   sql.NullString
		endereco sql.NullString
		bairro   sql.NullString
		cidade   sql.NullString
		preco    sql.NullFloat64
		area     sql.NullFloat64
		quartos  sql.NullInt64
	)
	err := row.Scan(
		&rec.ID, &rec.Listing.FingerprintExact, &rec.Listing.FingerprintFuzzy,
		&url, &titulo, &endereco, &bairro, &cidade, &preco, &area, &quartos,
		&rec.Listing.Source, &rec.Listing.CollectedAt,
		&rec.DedupState, &rec.DuplicateOf, &rec.SyncState,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("staging: scan: %w", err)
	}

	rec.Listing.SourceURL = url.String
	rec.Listing.Title = titulo.String
	rec.Listing.Address = endereco.String
	rec.Listing.Neighborhood = bairro.String
	rec.Listing.City = cidade.String
	if preco.Valid {
		rec.Listing.Price = model.FloatPtr(preco.Float64)
	}
	if area.Valid {
		rec.Listing.Area = model.FloatPtr(area.Float64)
	}
	if quartos.Valid {
		rec.Listing.Rooms = model.IntPtr(int(quartos.Int64))
	}
	return &rec, nil
}

func nullText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
