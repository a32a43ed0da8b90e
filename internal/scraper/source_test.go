package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func escreverJSONL(t *testing.T, conteudo string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coleta.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(conteudo), 0o644))
	return path
}

func TestFileSourceLeUmRegistroPorLinha(t *testing.T) {
	path := escreverJSONL(t, `{"url_anuncio":"https://x.com/1","preco":"500.000","fonte":"X"}

{"url_anuncio":"https://x.com/2","quartos":3}
isto não é json
{"endereco":"Rua B, 45","cidade":"Goiânia"}
`)

	src := &FileSource{Path: path, Fonte: "arquivo"}
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3, "linha em branco e linha inválida são puladas")

	assert.Equal(t, "X", records[0]["fonte"], "fonte presente no registro tem precedência")
	assert.Equal(t, "arquivo", records[1]["fonte"], "registro sem fonte herda a do arquivo")
	assert.Equal(t, float64(3), records[1]["quartos"], "números JSON chegam como float64")
	assert.Equal(t, "Rua B, 45", records[2]["endereco"])
}

func TestFileSourceArquivoInexistente(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nada.jsonl")}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestFileSourceRespeitaCancelamento(t *testing.T) {
	path := escreverJSONL(t, `{"url_anuncio":"https://x.com/1"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &FileSource{Path: path}
	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
