package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imovelsync/internal/model"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"R$ 1.200.000", 1200000},
		{"1.200.000,50", 1200000.50},
		{"1,200,000.50", 1200000.50},
		{"R$ 350.000", 350000},
		{"80 m²", 80},
		{"80,5", 80.5},
		{"95.5", 95.5},
		{"1.200", 1200},
		{"1,200", 1200},
		{"1200500", 1200500},
	}

	for _, tt := range tests {
		got := parseNumber(tt.raw)
		require.NotNil(t, got, "parseNumber(%q)", tt.raw)
		assert.Equal(t, tt.want, *got, "parseNumber(%q)", tt.raw)
	}

	assert.Nil(t, parseNumber("sob consulta"))
	assert.Nil(t, parseNumber(""))
}

func TestNormalizeAliases(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		raw  model.RawRecord
	}{
		{"chaves em português", model.RawRecord{
			"url_anuncio": "https://portal.com.br/anuncio/1",
			"titulo":      "Apartamento Centro",
			"endereco":    "Rua A, 123",
			"bairro":      "Centro",
			"cidade":      "Goiânia",
			"preco":       "R$ 350.000",
			"area":        "70 m²",
			"quartos":     "2 quartos",
			"fonte":       "zapimoveis",
		}},
		{"chaves acentuadas", model.RawRecord{
			"url_anuncio": "https://portal.com.br/anuncio/1",
			"título":      "Apartamento Centro",
			"endereço":    "Rua A, 123",
			"bairro":      "Centro",
			"cidade":      "Goiânia",
			"preço":       350000.0,
			"área":        70,
			"quartos":     2,
			"fonte":       "zapimoveis",
		}},
		{"chaves em inglês", model.RawRecord{
			"sourceUrl":    "https://portal.com.br/anuncio/1",
			"title":        "Apartamento Centro",
			"address":      "Rua A, 123",
			"neighborhood": "Centro",
			"city":         "Goiânia",
			"price":        "350,000",
			"area":         "70",
			"bedrooms":     "2",
			"platform":     "zapimoveis",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := n.Normalize(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, "https://portal.com.br/anuncio/1", l.SourceURL)
			assert.Equal(t, "Apartamento Centro", l.Title)
			assert.Equal(t, "Rua A, 123", l.Address)
			assert.Equal(t, "Centro", l.Neighborhood)
			assert.Equal(t, "Goiânia", l.City)
			require.NotNil(t, l.Price)
			assert.Equal(t, 350000.0, *l.Price)
			require.NotNil(t, l.Area)
			assert.Equal(t, 70.0, *l.Area)
			require.NotNil(t, l.Rooms)
			assert.Equal(t, 2, *l.Rooms)
			assert.Equal(t, "zapimoveis", l.Source)
		})
	}
}

func TestNormalizePrefereURLCanonica(t *testing.T) {
	n := New()

	l, err := n.Normalize(model.RawRecord{
		"url_anuncio": "https://portal.com.br/a/1",
		"link":        "https://outro.com.br/b/2",
		"titulo":      "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://portal.com.br/a/1", l.SourceURL)
}

func TestNormalizeCamposIlegiveisViramNil(t *testing.T) {
	n := New()

	l, err := n.Normalize(model.RawRecord{
		"url_anuncio": "https://portal.com.br/anuncio/9",
		"preco":       "sob consulta",
		"area":        "indefinida",
		"quartos":     "vários",
	})
	require.NoError(t, err)
	assert.Nil(t, l.Price)
	assert.Nil(t, l.Area)
	assert.Nil(t, l.Rooms)
}

func TestNormalizeRejeitaSemIdentidade(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		raw  model.RawRecord
	}{
		{"vazio", model.RawRecord{}},
		{"só título", model.RawRecord{"titulo": "Casa bonita"}},
		{"endereço sem preço", model.RawRecord{"endereco": "Rua A, 123"}},
		{"preço sem endereço", model.RawRecord{"preco": "R$ 100.000"}},
		{"preço ilegível", model.RawRecord{"endereco": "Rua A, 123", "preco": "consulte"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingIdentity)
		})
	}

	// Endereço com preço é identidade suficiente mesmo sem URL.
	l, err := n.Normalize(model.RawRecord{"endereco": "Rua A, 123", "preco": "R$ 100.000"})
	require.NoError(t, err)
	assert.Equal(t, "Rua A, 123", l.Address)
}

func TestNormalizeColetadoEm(t *testing.T) {
	fixo := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	n := &Normalizer{now: func() time.Time { return fixo }}

	l, err := n.Normalize(model.RawRecord{"url_anuncio": "https://p.com/1"})
	require.NoError(t, err)
	assert.Equal(t, fixo, l.CollectedAt)

	l, err = n.Normalize(model.RawRecord{
		"url_anuncio": "https://p.com/1",
		"coletado_em": "2026-07-15T08:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 15, 8, 30, 0, 0, time.UTC), l.CollectedAt)
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo", "sao paulo"},
		{"  Rua A, 123  ", "rua a 123"},
		{"SETOR   MARISTA", "setor marista"},
		{"Goiânia", "goiania"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Rua A, 123", CleanText("  Rua A,   123\n"))
	assert.Equal(t, "", CleanText("   "))
}
