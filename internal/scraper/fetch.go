package scraper

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var httpClient = &http.Client{Timeout: 60 * time.Second}

// FetchHTML baixa o HTML de uma página estática. Portais que montam a
// listagem via JavaScript precisam de RenderPage.
func FetchHTML(url string) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("requisição %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("portal status %d para %s", resp.StatusCode, url)
	}

	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

// withRetry repete a operação com espera crescente entre tentativas.
// Portais de anúncio falham de forma intermitente sob rate-limit, e
// quase sempre a segunda tentativa passa.
func withRetry(name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 3
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			wait := baseDelay * time.Duration(i+1)
			log.Printf("[scraper] %s: tentativa %d falhou: %v; aguardando %s", name, i+1, err, wait)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("%s: %d tentativas esgotadas: %w", name, attempts, err)
}
