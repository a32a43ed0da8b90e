package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paginaResultados = `
<html><body>
<div class="listings">
  <div data-cy="rp-property-cd">
    <a href="https://www.zapimoveis.com.br/imovel/apartamento-centro-123/">ver</a>
    <h2 data-cy="rp-cardProperty-location-txt">Centro, São Paulo</h2>
    <p data-cy="rp-cardProperty-street-txt">
      Rua A, 123
    </p>
    <div data-cy="rp-cardProperty-price-txt">
      <p>R$ 1.200.000</p>
      <p>Cond. R$ 800</p>
    </div>
    <ul>
      <li data-cy="rp-cardProperty-propertyArea-txt">80 m²</li>
      <li data-cy="rp-cardProperty-bedroomQuantity-txt">3</li>
      <li data-cy="rp-cardProperty-bathroomQuantity-txt">2</li>
      <li data-cy="rp-cardProperty-parkingSpacesQuantity-txt">1</li>
    </ul>
  </div>

  <div data-cy="rp-property-cd">
    <a href="/imovel/casa-jardins-456/">ver</a>
    <div data-cy="rp-cardProperty-price-txt"><p>R$ 700.000</p></div>
  </div>

  <div data-cy="rp-property-cd">
    <span>card vazio, ainda sem conteúdo carregado</span>
  </div>

  <div class="banner"><a href="https://anunciante.example.com">publicidade</a></div>
</div>
</body></html>`

func TestParseCardsExtraiCamposDoCard(t *testing.T) {
	records, err := ParseCards(paginaResultados, "zapimoveis")
	require.NoError(t, err)
	require.Len(t, records, 2, "cards sem nenhum campo são descartados")

	primeiro := records[0]
	assert.Equal(t, "zapimoveis", primeiro["fonte"])
	assert.Equal(t, "https://www.zapimoveis.com.br/imovel/apartamento-centro-123/", primeiro["url_anuncio"])
	assert.Equal(t, "Rua A, 123", primeiro["endereco"], "texto do card vem sem a indentação do HTML")
	assert.Equal(t, "Centro, São Paulo", primeiro["bairro"])
	assert.Equal(t, "R$ 1.200.000", primeiro["preco"], "só o primeiro parágrafo do bloco de preço; condomínio fica de fora")
	assert.Equal(t, "80 m²", primeiro["area"])
	assert.Equal(t, "3", primeiro["quartos"])
	assert.Equal(t, "2", primeiro["banheiros"])
	assert.Equal(t, "1", primeiro["vagas"])

	segundo := records[1]
	assert.Equal(t, "/imovel/casa-jardins-456/", segundo["url_anuncio"])
	assert.Equal(t, "R$ 700.000", segundo["preco"])
	_, temEndereco := segundo["endereco"]
	assert.False(t, temEndereco, "campo ausente no card não entra no registro")
}

func TestParseCardsPaginaSemCards(t *testing.T) {
	records, err := ParseCards("<html><body><p>Nenhum resultado encontrado.</p></body></html>", "zapimoveis")
	require.NoError(t, err)
	assert.Empty(t, records)
}
