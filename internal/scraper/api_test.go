package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortalAPISegueAPaginacao(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.RequestURI() {
		case "/api/v1/anuncios?limit=50":
			fmt.Fprint(w, `{
				"totalResults": 3, "offset": 0, "limit": 2,
				"links": [{"rel":"self","href":"/api/v1/anuncios?limit=50"},{"rel":"next","href":"/api/v1/anuncios?limit=50&offset=2"}],
				"items": [{"url_anuncio":"https://x.com/1"},{"url_anuncio":"https://x.com/2","fonte":"outra"}]
			}`)
		case "/api/v1/anuncios?limit=50&offset=2":
			fmt.Fprint(w, `{
				"totalResults": 3, "offset": 2, "limit": 2,
				"links": [{"rel":"self","href":"/api/v1/anuncios?limit=50&offset=2"}],
				"items": [{"url_anuncio":"https://x.com/3"}]
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := &PortalAPI{BaseURL: srv.URL, Fonte: "portal-x"}
	records, err := api.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3, "as duas páginas são concatenadas")

	assert.Equal(t, "https://x.com/1", records[0]["url_anuncio"])
	assert.Equal(t, "portal-x", records[0]["fonte"], "itens sem fonte ganham a do coletor")
	assert.Equal(t, "outra", records[1]["fonte"], "fonte do item tem precedência")
	assert.Equal(t, "https://x.com/3", records[2]["url_anuncio"])
}

func TestPortalAPIStatusNaoOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "instabilidade", http.StatusBadGateway)
	}))
	defer srv.Close()

	api := &PortalAPI{BaseURL: srv.URL}
	_, err := api.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNextPageURL(t *testing.T) {
	casos := []struct {
		nome     string
		links    []portalLink
		esperado string
	}{
		{"sem links", nil, ""},
		{"só self", []portalLink{{Rel: "self", Href: "/a"}}, ""},
		{"next relativo", []portalLink{{Rel: "next", Href: "/a?offset=2"}}, "https://portal.com/a?offset=2"},
		{"next absoluto", []portalLink{{Rel: "next", Href: "https://cdn.portal.com/a"}}, "https://cdn.portal.com/a"},
		{"next vazio encerra", []portalLink{{Rel: "next", Href: "  "}}, ""},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			assert.Equal(t, tc.esperado, nextPageURL("https://portal.com", tc.links))
		})
	}
}
