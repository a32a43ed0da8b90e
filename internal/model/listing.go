package model

import "time"

// RawRecord é o registro bruto entregue pela camada de extração:
// um mapa de campo para valor, sem nenhuma garantia de presença ou formato.
type RawRecord map[string]any

// Listing é o anúncio canônico, já normalizado.
type Listing struct {
	SourceURL    string
	Title        string
	Address      string
	Neighborhood string
	City         string
	Price        *float64 // nil quando o valor bruto não pôde ser interpretado
	Area         *float64
	Rooms        *int
	Source       string
	CollectedAt  time.Time

	// Derivados pelo fingerprint, nunca fornecidos pela fonte.
	FingerprintExact string
	FingerprintFuzzy string
}

// Estados de deduplicação de um StagingRecord.
const (
	DedupUnique    = "UNIQUE"
	DedupDuplicate = "DUPLICATE"
)

// Estados de sincronização. SYNCED nunca regride.
const (
	SyncPending = "PENDING"
	SyncSynced  = "SYNCED"
	SyncFailed  = "FAILED"
)

// StagingRecord é um Listing estacionado na base local, com o estado
// de deduplicação e de sincronização que o pipeline mantém.
type StagingRecord struct {
	ID          string
	Listing     Listing
	DedupState  string
	DuplicateOf string // id do registro vencedor quando DedupState = DUPLICATE
	SyncState   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SyncReport resume uma passada do motor de sincronização.
type SyncReport struct {
	Synced int
	Failed int
}

// Status de uma execução do pipeline
const (
	RunSuccess = "sucesso"
	RunPartial = "parcial"
	RunError   = "erro"
)

// RunLog é o resumo de uma execução completa, gravado na tabela execucoes.
type RunLog struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Ingested   int
	Rejected   int
	NewUnique  int
	Duplicates int
	Synced     int
	Failed     int
	Status     string
	Details    string
}

// FloatPtr e IntPtr ajudam a montar campos opcionais.
func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
