package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

// New abre a conexão com a base de staging via database/sql.
func New(url string) (*sql.DB, error) {
	return sql.Open("postgres", url)
}

// NewPool abre o pool pgx usado pela base de destino.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, url)
}
