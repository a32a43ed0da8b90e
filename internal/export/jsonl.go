package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"imovelsync/internal/model"
)

// WriteJSONL grava os registros brutos um por linha, no formato que o
// pipeline lê de volta via FileSource. É o elo entre rodar a coleta e
// rodar o pipeline como comandos separados.
func WriteJSONL(path string, records []model.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("jsonl: criar diretório: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("jsonl: criar arquivo %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("jsonl: codificar registro: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("jsonl: flush: %w", err)
	}

	return nil
}
