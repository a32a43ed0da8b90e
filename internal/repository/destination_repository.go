package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"imovelsync/internal/model"
)

// DestinationRepository grava os anúncios deduplicados na base durável,
// uma linha por imóvel, chaveada pelo fingerprint exato. O upsert é
// idempotente: repetir a transferência atualiza ultimo_visto e preenche
// campos que ainda estavam vazios, nunca cria segunda linha.
type DestinationRepository struct {
	DB *pgxpool.Pool
}

func NewDestinationRepository(ctx context.Context, pool *pgxpool.Pool) (*DestinationRepository, error) {
	r := &DestinationRepository{DB: pool}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("destino: migrate: %w", err)
	}
	return r, nil
}

func (r *DestinationRepository) migrate(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS anuncios (
			fingerprint    TEXT PRIMARY KEY,
			url_anuncio    TEXT,
			titulo         TEXT,
			endereco       TEXT,
			bairro         TEXT,
			cidade         TEXT,
			preco          NUMERIC,
			area           NUMERIC,
			quartos        INT,
			fonte          TEXT NOT NULL DEFAULT '',
			coletado_em    TIMESTAMPTZ,
			primeiro_visto TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ultimo_visto   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_anuncios_cidade ON anuncios (cidade);
		CREATE INDEX IF NOT EXISTS idx_anuncios_preco  ON anuncios (preco);
	`)
	return err
}

func (r *DestinationRepository) Upsert(ctx context.Context, l model.Listing) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO anuncios
		(fingerprint, url_anuncio, titulo, endereco, bairro, cidade,
		 preco, area, quartos, fonte, coletado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (fingerprint) DO UPDATE SET
			url_anuncio  = COALESCE(EXCLUDED.url_anuncio, anuncios.url_anuncio),
			titulo       = COALESCE(EXCLUDED.titulo, anuncios.titulo),
			endereco     = COALESCE(EXCLUDED.endereco, anuncios.endereco),
			bairro       = COALESCE(EXCLUDED.bairro, anuncios.bairro),
			cidade       = COALESCE(EXCLUDED.cidade, anuncios.cidade),
			preco        = COALESCE(EXCLUDED.preco, anuncios.preco),
			area         = COALESCE(EXCLUDED.area, anuncios.area),
			quartos      = COALESCE(EXCLUDED.quartos, anuncios.quartos),
			ultimo_visto = NOW()
	`, l.FingerprintExact,
		nullText(l.SourceURL), nullText(l.Title), nullText(l.Address),
		nullText(l.Neighborhood), nullText(l.City),
		nullFloat(l.Price), nullFloat(l.Area), nullInt(l.Rooms),
		l.Source, l.CollectedAt)
	if err != nil {
		return fmt.Errorf("destino: upsert %s: %w", l.FingerprintExact, err)
	}
	return nil
}

// Count informa quantos imóveis únicos já chegaram ao destino.
func (r *DestinationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM anuncios`).Scan(&n)
	return n, err
}

func (r *DestinationRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
