package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	StagingURL     string
	DestinationURL string
	RedisURL       string
	OpenAIKey      string
	MetricsPort    string
	SyncWorkers    int
	SyncTimeoutSec int

	// Coleta
	SourceMode string // "portal", "api", "llm" ou "arquivo"
	PortalURL  string
	Fonte      string
	InputFile  string
	ExportDir  string
	RenderWait int
	Tentativas int
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()
	return &Config{
		StagingURL:     os.Getenv("DATABASE_URL"),
		DestinationURL: os.Getenv("DESTINATION_DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		SyncWorkers:    getEnvInt("SYNC_WORKERS", 5),
		SyncTimeoutSec: getEnvInt("SYNC_TIMEOUT_SECONDS", 30),

		SourceMode: getEnv("SOURCE_MODE", "arquivo"),
		PortalURL:  os.Getenv("PORTAL_URL"),
		Fonte:      getEnv("FONTE", "zapimoveis"),
		InputFile:  getEnv("INPUT_FILE", "dados/coleta.jsonl"),
		ExportDir:  getEnv("EXPORT_DIR", "resultados_coleta"),
		RenderWait: getEnvInt("RENDER_WAIT_SECONDS", 5),
		Tentativas: getEnvInt("FETCH_RETRIES", 3),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
