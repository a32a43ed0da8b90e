package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imovelsync/internal/dedup"
	"imovelsync/internal/model"
	"imovelsync/internal/normalizer"
	"imovelsync/internal/repository"
	"imovelsync/internal/syncer"
)

type fonteEstatica struct {
	registros []model.RawRecord
	err       error
}

func (f *fonteEstatica) Name() string { return "teste" }

func (f *fonteEstatica) Fetch(context.Context) ([]model.RawRecord, error) {
	return f.registros, f.err
}

// destinoSeletivo falha o upsert das chaves marcadas.
type destinoSeletivo struct {
	mu      sync.Mutex
	falhaEm map[string]bool
	itens   map[string]model.Listing
}

func novoDestinoSeletivo() *destinoSeletivo {
	return &destinoSeletivo{falhaEm: make(map[string]bool), itens: make(map[string]model.Listing)}
}

func (d *destinoSeletivo) Upsert(_ context.Context, l model.Listing) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.falhaEm[l.FingerprintExact] {
		return errors.New("falha simulada")
	}
	d.itens[l.FingerprintExact] = l
	return nil
}

func (d *destinoSeletivo) Ping(context.Context) error { return nil }

func montarPipeline(source Source, staging *repository.MemoryStaging, destino repository.DestinationStore, runs *repository.MemoryRunLog) *Pipeline {
	return &Pipeline{
		Source:      source,
		Normalizer:  normalizer.New(),
		Dedup:       dedup.New(staging),
		Sync:        syncer.New(staging, destino, 2, time.Second),
		Staging:     staging,
		Destination: destino,
		Runs:        runs,
	}
}

// Dois portais anunciam o mesmo imóvel: o X com URL e o Y só com
// endereço. O lote ainda traz um registro sem identidade.
func loteDoisPortais() []model.RawRecord {
	return []model.RawRecord{
		{
			"url_anuncio": "https://portal-x.com.br/anuncio/1",
			"titulo":      "Apartamento no Centro",
			"cidade":      "São Paulo",
			"bairro":      "Centro",
			"preco":       "1.200.000",
			"area":        "80 m²",
			"quartos":     "3",
			"fonte":       "X",
		},
		{
			"endereco": "Rua A, 123",
			"cidade":   "são paulo",
			"bairro":   "CENTRO",
			"preco":    "1200500",
			"area":     "80",
			"quartos":  3,
			"fonte":    "Y",
		},
		{
			"titulo": "Sem identidade",
			"cidade": "São Paulo",
		},
	}
}

func TestRunOnceDoisPortaisUmImovel(t *testing.T) {
	staging := repository.NewMemoryStaging()
	destino := repository.NewMemoryDestination()
	runs := repository.NewMemoryRunLog()
	p := montarPipeline(&fonteEstatica{registros: loteDoisPortais()}, staging, destino, runs)

	run, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, run.Ingested)
	assert.Equal(t, 1, run.Rejected)
	assert.Equal(t, 1, run.NewUnique)
	assert.Equal(t, 1, run.Duplicates)
	assert.Equal(t, 1, run.Synced)
	assert.Equal(t, 0, run.Failed)
	assert.Equal(t, model.RunSuccess, run.Status)

	rows := staging.All()
	require.Len(t, rows, 1, "os dois portais colapsam num único registro")
	staged := rows[0]
	assert.Equal(t, model.SyncSynced, staged.SyncState)
	assert.Equal(t, "Apartamento no Centro", staged.Listing.Title)
	assert.Equal(t, "Rua A, 123", staged.Listing.Address, "o endereço do Y preenche o campo vazio do X")
	assert.Equal(t, "X", staged.Listing.Source)

	assert.Equal(t, 1, destino.Len())
	got, ok := destino.Get("https://portal-x.com.br/anuncio/1")
	require.True(t, ok, "a chave do destino é a URL normalizada")
	assert.Equal(t, "Rua A, 123", got.Address, "o destino recebe o registro já mesclado")

	historico, err := runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, historico, 1)
	assert.Equal(t, model.RunSuccess, historico[0].Status)
}

func TestRunOnceReexecucaoEIdempotencia(t *testing.T) {
	staging := repository.NewMemoryStaging()
	destino := repository.NewMemoryDestination()
	runs := repository.NewMemoryRunLog()
	p := montarPipeline(&fonteEstatica{registros: loteDoisPortais()}, staging, destino, runs)
	ctx := context.Background()

	_, err := p.RunOnce(ctx)
	require.NoError(t, err)

	run, err := p.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, run.Ingested)
	assert.Equal(t, 1, run.Rejected)
	assert.Equal(t, 0, run.NewUnique, "re-executar o mesmo lote não cria linhas")
	assert.Equal(t, 2, run.Duplicates)
	assert.Equal(t, 0, run.Synced, "quem já está SYNCED não volta para a fila")
	assert.Equal(t, model.RunSuccess, run.Status)

	assert.Len(t, staging.All(), 1)
	assert.Equal(t, 1, destino.Len())

	historico, err := runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, historico, 2)
}

func TestRunOnceFalhaParcialESuaRetomada(t *testing.T) {
	staging := repository.NewMemoryStaging()
	destino := novoDestinoSeletivo()
	runs := repository.NewMemoryRunLog()
	ctx := context.Background()

	lote := []model.RawRecord{
		{"url_anuncio": "https://portal-x.com.br/anuncio/1", "cidade": "Goiânia", "bairro": "Setor Marista", "preco": "500.000", "fonte": "X"},
		{"url_anuncio": "https://portal-x.com.br/anuncio/2", "cidade": "Goiânia", "bairro": "Setor Bueno", "preco": "700.000", "fonte": "X"},
	}
	destino.falhaEm["https://portal-x.com.br/anuncio/2"] = true

	p := montarPipeline(&fonteEstatica{registros: lote}, staging, destino, runs)
	run, err := p.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, run.NewUnique)
	assert.Equal(t, 1, run.Synced)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, model.RunPartial, run.Status)
	assert.NotEmpty(t, run.Details)

	// O destino volta; a execução seguinte retransfere só o que falhou,
	// mesmo sem nenhum registro novo na coleta.
	destino.falhaEm["https://portal-x.com.br/anuncio/2"] = false
	p.Source = &fonteEstatica{}

	run, err = p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Ingested)
	assert.Equal(t, 1, run.Synced)
	assert.Equal(t, 0, run.Failed)
	assert.Equal(t, model.RunSuccess, run.Status)

	for _, rec := range staging.All() {
		assert.Equal(t, model.SyncSynced, rec.SyncState)
	}
}

func TestRunOnceAbortaQuandoColetaFalha(t *testing.T) {
	staging := repository.NewMemoryStaging()
	destino := repository.NewMemoryDestination()
	runs := repository.NewMemoryRunLog()
	p := montarPipeline(&fonteEstatica{err: errors.New("portal fora do ar")}, staging, destino, runs)

	run, err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.RunError, run.Status)

	historico, err := runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, historico, 1, "execução abortada também vira linha no histórico")
	assert.Equal(t, model.RunError, historico[0].Status)
	assert.Contains(t, historico[0].Details, "portal fora do ar")
}
