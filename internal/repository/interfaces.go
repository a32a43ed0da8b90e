package repository

import (
	"context"

	"imovelsync/internal/model"
)

// StagingStore é o contrato da base de estacionamento consumido pelo
// deduplicador e pelo motor de sincronização. Implementações: Postgres
// (produção) e memória (testes e dry-run).
type StagingStore interface {
	// InsertIfAbsent insere o registro se a chave exata ainda não existe e
	// devolve o registro sobrevivente. O segundo retorno indica se a
	// inserção aconteceu; quando false, o registro devolvido é o que já
	// estava estacionado, e o perdedor da corrida pela mesma chave vira
	// duplicata dele.
	InsertIfAbsent(ctx context.Context, rec model.StagingRecord) (model.StagingRecord, bool, error)

	FindByExact(ctx context.Context, fp string) (*model.StagingRecord, error)
	FindByFuzzy(ctx context.Context, fp string) (*model.StagingRecord, error)

	// FillForward preenche campos ainda vazios do registro estacionado com
	// os valores do Listing recebido. Campos já preenchidos nunca são
	// sobrescritos.
	FillForward(ctx context.Context, id string, l model.Listing) error

	// ListPendingSync devolve os registros UNIQUE com sync PENDING ou
	// FAILED, na ordem em que foram estacionados.
	ListPendingSync(ctx context.Context) ([]model.StagingRecord, error)

	MarkSynced(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

// DestinationStore é o destino durável. Upsert precisa ser idempotente
// pela chave exata: repetir a transferência nunca cria segunda linha.
type DestinationStore interface {
	Upsert(ctx context.Context, l model.Listing) error
	Ping(ctx context.Context) error
}

// RunLogStore guarda o resumo de cada execução (tabela execucoes).
type RunLogStore interface {
	Append(ctx context.Context, r model.RunLog) error
	ListRecent(ctx context.Context, limit int) ([]model.RunLog, error)
}
