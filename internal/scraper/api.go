package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"imovelsync/internal/model"
)

// PortalAPI coleta anúncios de portais que expõem a listagem por API
// JSON paginada. Cada item vem como mapa cru; a tipagem acontece só na
// normalização.
type PortalAPI struct {
	BaseURL string
	Caminho string
	Fonte   string
}

type portalPage struct {
	TotalResults int               `json:"totalResults"`
	Offset       int               `json:"offset"`
	Limit        int               `json:"limit"`
	Links        []portalLink      `json:"links"`
	Items        []model.RawRecord `json:"items"`
}

type portalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

func (p *PortalAPI) Name() string { return "api:" + p.Fonte }

func (p *PortalAPI) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	caminho := p.Caminho
	if caminho == "" {
		caminho = "/api/v1/anuncios?limit=50"
	}
	nextURL := p.BaseURL + caminho

	var out []model.RawRecord
	for nextURL != "" {
		req, err := http.NewRequestWithContext(ctx, "GET", nextURL, nil)
		if err != nil {
			return nil, fmt.Errorf("requisição %s: %w", nextURL, err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("busca %s: %w", nextURL, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("portal status %d para %s", resp.StatusCode, nextURL)
		}

		var page portalPage
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decodificação de %s: %w", nextURL, err)
		}
		resp.Body.Close()

		for _, item := range page.Items {
			if _, ok := item["fonte"]; !ok {
				item["fonte"] = p.Fonte
			}
			out = append(out, item)
		}

		nextURL = nextPageURL(p.BaseURL, page.Links)
	}

	return out, nil
}

func nextPageURL(baseURL string, links []portalLink) string {
	for _, link := range links {
		if link.Rel != "next" {
			continue
		}
		href := strings.TrimSpace(link.Href)
		if href == "" {
			return ""
		}
		if strings.HasPrefix(href, "/") {
			return baseURL + href
		}
		return href
	}
	return ""
}
