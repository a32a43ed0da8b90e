package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"imovelsync/internal/model"
)

// ParseCards extrai os cards de anúncio do HTML de uma página de
// resultados. Os seletores seguem o padrão data-cy dos grandes portais
// de imóveis; cada card vira um registro cru com os textos como estão
// na página, sem conversão de preço ou área.
func ParseCards(html, fonte string) ([]model.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	doc.Find("[data-cy=rp-property-cd]").Each(func(_ int, card *goquery.Selection) {
		rec := model.RawRecord{"fonte": fonte}

		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			rec["url_anuncio"] = strings.TrimSpace(href)
		}
		setText(rec, "endereco", card.Find("p[data-cy=rp-cardProperty-street-txt]"))
		setText(rec, "bairro", card.Find("h2[data-cy=rp-cardProperty-location-txt]"))
		setText(rec, "preco", card.Find("div[data-cy=rp-cardProperty-price-txt] p").First())
		setText(rec, "area", card.Find("li[data-cy=rp-cardProperty-propertyArea-txt]"))
		setText(rec, "quartos", card.Find("li[data-cy=rp-cardProperty-bedroomQuantity-txt]"))
		setText(rec, "banheiros", card.Find("li[data-cy=rp-cardProperty-bathroomQuantity-txt]"))
		setText(rec, "vagas", card.Find("li[data-cy=rp-cardProperty-parkingSpacesQuantity-txt]"))

		if len(rec) > 1 {
			records = append(records, rec)
		}
	})

	return records, nil
}

func setText(rec model.RawRecord, key string, sel *goquery.Selection) {
	text := strings.TrimSpace(sel.First().Text())
	if text != "" {
		rec[key] = text
	}
}
