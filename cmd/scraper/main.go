package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"imovelsync/internal/config"
	"imovelsync/internal/export"
	"imovelsync/internal/extractor"
	"imovelsync/internal/model"
	"imovelsync/internal/scraper"
)

// go run cmd/scraper/main.go -mode=portal -url="https://www.zapimoveis.com.br/venda/apartamentos/go+goiania++setor-marista/"
// go run cmd/scraper/main.go -mode=llm -url="https://portal-sem-seletor.com.br/busca" -fonte=outroportal
func main() {
	mode := flag.String("mode", "portal", "Modo de coleta: 'portal' (seletores) ou 'llm' (extração via modelo)")
	url := flag.String("url", "", "URL da página de resultados do portal")
	fonte := flag.String("fonte", "", "Nome da fonte gravado em cada registro")
	estatico := flag.Bool("estatico", false, "Baixa o HTML direto, sem renderizar com Chrome")
	flag.Parse()

	cfg := config.Load()

	pageURL := *url
	if pageURL == "" {
		pageURL = cfg.PortalURL
	}
	if pageURL == "" {
		log.Fatal("Informe a URL do portal via -url ou PORTAL_URL")
	}
	nomeFonte := *fonte
	if nomeFonte == "" {
		nomeFonte = cfg.Fonte
	}

	var seen *scraper.SeenCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("REDIS_URL inválida: %v", err)
		}
		seen = scraper.NewSeenCache(redis.NewClient(opts))
	}

	ctx := context.Background()
	wait := time.Duration(cfg.RenderWait) * time.Second

	var records []model.RawRecord
	var err error
	switch *mode {
	case "llm":
		if cfg.OpenAIKey == "" {
			log.Fatal("OPENAI_API_KEY é obrigatória no modo llm")
		}
		source := &extractor.PortalLLM{
			Extractor:  extractor.New(openai.NewClient(cfg.OpenAIKey)),
			URL:        pageURL,
			Fonte:      nomeFonte,
			RenderWait: wait,
		}
		records, err = source.Fetch(ctx)
	default:
		source := &scraper.PortalWeb{
			URL:        pageURL,
			Fonte:      nomeFonte,
			RenderWait: wait,
			Tentativas: cfg.Tentativas,
			Estatico:   *estatico,
			Seen:       seen,
		}
		records, err = source.Fetch(ctx)
	}
	if err != nil {
		log.Fatalf("Erro na coleta de %s: %v", pageURL, err)
	}

	if err := export.WriteJSONL(cfg.InputFile, records); err != nil {
		log.Fatalf("Erro ao gravar %s: %v", cfg.InputFile, err)
	}

	csvPath := export.DefaultPath(cfg.ExportDir, nomeFonte)
	w, err := export.NewCSVWriter(csvPath)
	if err != nil {
		log.Fatalf("Erro ao criar CSV: %v", err)
	}
	defer w.Close()
	if err := w.WriteRaw(records); err != nil {
		log.Fatalf("Erro ao gravar CSV: %v", err)
	}

	log.Printf("Coleta finalizada: %d registros em %s e %s", len(records), cfg.InputFile, csvPath)
}
