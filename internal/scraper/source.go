package scraper

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"imovelsync/internal/model"
)

// FileSource lê registros brutos de um arquivo JSONL exportado por uma
// coleta anterior, um objeto por linha. Permite rodar coleta e
// pipeline como etapas separadas.
type FileSource struct {
	Path  string
	Fonte string
}

func (f *FileSource) Name() string { return "arquivo:" + f.Path }

func (f *FileSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", f.Path, err)
	}
	defer file.Close()

	var out []model.RawRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec model.RawRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			log.Printf("[scraper] %s linha %d inválida: %v", f.Path, line, err)
			continue
		}
		if _, ok := rec["fonte"]; !ok && f.Fonte != "" {
			rec["fonte"] = f.Fonte
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("leitura de %s: %w", f.Path, err)
	}

	return out, nil
}
