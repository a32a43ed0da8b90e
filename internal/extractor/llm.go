package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"imovelsync/internal/model"
	"imovelsync/internal/scraper"
)

// Limite de caracteres enviados ao modelo. Páginas de resultado já
// limpas ficam bem abaixo disso; o corte evita estourar o contexto em
// páginas fora do padrão.
const maxContentChars = 48000

var ErrSemJSON = errors.New("resposta do modelo sem JSON reconhecível")

// Extractor usa o LLM para transformar o conteúdo de uma página de
// portal em registros brutos, para portais sem seletores conhecidos.
type Extractor struct {
	Client *openai.Client
	Model  string
}

func New(client *openai.Client) *Extractor {
	return &Extractor{Client: client, Model: openai.GPT4oMini}
}

func (e *Extractor) Extract(ctx context.Context, pageContent, fonte string) ([]model.RawRecord, error) {
	if len(pageContent) > maxContentChars {
		pageContent = pageContent[:maxContentChars]
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    "system",
			Content: SystemPrompt(),
		},
		{
			Role:    "user",
			Content: "CONTEÚDO DA PÁGINA:\n" + pageContent,
		},
	}

	charCount := len(pageContent)
	tokenEstimate := charCount / 4 // Estimativa média: 1 token ~= 4 caracteres
	log.Printf("[extractor] enviando página para o modelo: %d caracteres | ~%d tokens estimados", charCount, tokenEstimate)

	resp, err := e.Client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       e.Model,
			Messages:    messages,
			Temperature: 0,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("extração via LLM: %w", err)
	}

	records, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if _, ok := rec["fonte"]; !ok {
			rec["fonte"] = fonte
		}
	}
	log.Printf("[extractor] %d imóveis extraídos de %s", len(records), fonte)
	return records, nil
}

type respostaImoveis struct {
	Imoveis []model.RawRecord `json:"imoveis"`
}

// ParseResponse extrai o envelope {"imoveis": [...]} da resposta do
// modelo. Modelos às vezes devolvem texto em volta do JSON; nesse caso
// vale o trecho entre a primeira '{' e a última '}'.
func ParseResponse(content string) ([]model.RawRecord, error) {
	var envelope respostaImoveis
	if err := json.Unmarshal([]byte(content), &envelope); err == nil {
		return envelope.Imoveis, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, ErrSemJSON
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSemJSON, err)
	}
	return envelope.Imoveis, nil
}

// PortalLLM é a origem para portais sem seletores mapeados: renderiza
// a página e delega a extração ao modelo.
type PortalLLM struct {
	Extractor  *Extractor
	URL        string
	Fonte      string
	RenderWait time.Duration
}

func (p *PortalLLM) Name() string { return "llm:" + p.Fonte }

func (p *PortalLLM) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	html, err := scraper.RenderPage(ctx, p.URL, p.RenderWait)
	if err != nil {
		return nil, err
	}
	return p.Extractor.Extract(ctx, html, p.Fonte)
}
