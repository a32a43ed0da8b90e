package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imovelsync/internal/model"
)

var csvColunas = []string{
	"fonte", "titulo", "preco", "endereco", "bairro", "cidade",
	"area", "quartos", "banheiros", "vagas", "url_anuncio",
}

// CSVWriter grava registros brutos em CSV separado por ponto e vírgula,
// o formato que abre direto no Excel em português. Seguro para uso
// concorrente.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: criar diretório: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: criar arquivo %q: %w", path, err)
	}

	// BOM para o Excel reconhecer UTF-8 com acentuação.
	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: escrever BOM: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(csvColunas); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: escrever cabeçalho: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

func (c *CSVWriter) WriteRaw(records []model.RawRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		row := make([]string, len(csvColunas))
		for i, col := range csvColunas {
			row[i] = campoTexto(rec[col])
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: escrever linha: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func campoTexto(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// DefaultPath monta o nome do arquivo de saída com fonte e timestamp,
// um arquivo por coleta.
func DefaultPath(dir, fonte string) string {
	name := fmt.Sprintf("%s_%s.csv", fonte, time.Now().Format("20060102_150405"))
	return filepath.Join(dir, name)
}
