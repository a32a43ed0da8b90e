package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"imovelsync/internal/model"
)

// Seletores removidos da página antes da extração. Banners e modais
// poluem o texto dos cards e confundem a extração por LLM.
const cleanupScript = `
	(function() {
		var selectors = [
			'script', 'style', 'footer', 'nav',
			'iframe', 'img', '.ads', '.popup',
			'.cookie-banner', '.modal'
		];
		selectors.forEach(function(selector) {
			document.querySelectorAll(selector).forEach(function(el) { el.remove(); });
		});
	})()
`

// RenderPage abre a URL num Chrome headless, espera o conteúdo montar,
// limpa os elementos de ruído e devolve o HTML resultante. É o caminho
// para portais que só montam a listagem via JavaScript.
func RenderPage(ctx context.Context, url string, wait time.Duration) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if wait <= 0 {
		wait = 5 * time.Second
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(wait),
		chromedp.Evaluate(cleanupScript, nil),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// PortalWeb coleta anúncios da página de resultados do portal e lê os
// cards. Por padrão renderiza a página num Chrome headless; portais com
// listagem montada no servidor dispensam o navegador com Estatico.
// URLs já vistas em coletas recentes são puladas quando há um cache
// configurado.
type PortalWeb struct {
	URL        string
	Fonte      string
	RenderWait time.Duration
	Tentativas int
	Estatico   bool
	Seen       *SeenCache
}

func (p *PortalWeb) Name() string { return "portal:" + p.Fonte }

func (p *PortalWeb) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	var html string
	err := withRetry("coleta-"+p.Fonte, p.Tentativas, 2*time.Second, func() error {
		var fetchErr error
		if p.Estatico {
			html, fetchErr = FetchHTML(p.URL)
		} else {
			html, fetchErr = RenderPage(ctx, p.URL, p.RenderWait)
		}
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	records, err := ParseCards(html, p.Fonte)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.URL, err)
	}
	log.Printf("[scraper] %s: %d cards extraídos", p.Fonte, len(records))

	if p.Seen == nil {
		return records, nil
	}

	fresh := records[:0]
	for _, rec := range records {
		url, _ := rec["url_anuncio"].(string)
		if url != "" && p.Seen.Seen(ctx, url) {
			continue
		}
		fresh = append(fresh, rec)
		if url != "" {
			p.Seen.MarkSeen(ctx, url)
		}
	}
	log.Printf("[scraper] %s: %d novos após cache de vistos", p.Fonte, len(fresh))
	return fresh, nil
}
