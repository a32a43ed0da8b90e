package dedup

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"imovelsync/internal/fingerprint"
	"imovelsync/internal/model"
	"imovelsync/internal/repository"
)

// Deduplicator decide, anúncio por anúncio, se o registro é inédito ou
// repetição de algo já em staging. A decisão consulta o fingerprint
// exato (mesma página re-coletada) e depois o fuzzy (mesmo imóvel em
// outro portal). O processamento é sequencial na ordem de chegada, o
// que torna o desempate entre colisões do mesmo lote determinístico:
// o primeiro processado vira o representante.
type Deduplicator struct {
	Store repository.StagingStore
}

func New(store repository.StagingStore) *Deduplicator {
	return &Deduplicator{Store: store}
}

// Process classifica cada anúncio e devolve um StagingRecord por
// entrada: o registro persistido quando é inédito, ou um registro
// sintético (não persistido) apontando o dono via DuplicateOf quando é
// repetição. Erros de consulta ao staging pulam o registro, que volta
// a ser avaliado na próxima execução.
func (d *Deduplicator) Process(ctx context.Context, listings []model.Listing) ([]model.StagingRecord, error) {
	out := make([]model.StagingRecord, 0, len(listings))

	for i := range listings {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		rec, err := d.processOne(ctx, listings[i])
		if err != nil {
			log.Printf("[dedup] erro ao classificar %q: %v; registro pulado", listings[i].SourceURL, err)
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}

func (d *Deduplicator) processOne(ctx context.Context, l model.Listing) (model.StagingRecord, error) {
	fingerprint.Stamp(&l)

	existing, err := d.Store.FindByExact(ctx, l.FingerprintExact)
	if err != nil {
		return model.StagingRecord{}, fmt.Errorf("busca exata: %w", err)
	}
	if existing != nil {
		// Mesma página re-coletada: nada muda na linha existente.
		return duplicateOf(l, existing.ID), nil
	}

	if hasFuzzyEvidence(l) {
		match, err := d.Store.FindByFuzzy(ctx, l.FingerprintFuzzy)
		if err != nil {
			return model.StagingRecord{}, fmt.Errorf("busca fuzzy: %w", err)
		}
		if match != nil && match.Listing.Source != l.Source {
			// Mesmo imóvel vindo de outro portal: o registro antigo
			// mantém a identidade e ganha os campos que lhe faltavam.
			if err := d.Store.FillForward(ctx, match.ID, l); err != nil {
				return model.StagingRecord{}, fmt.Errorf("fill-forward %s: %w", match.ID, err)
			}
			return duplicateOf(l, match.ID), nil
		}
	}

	rec := model.StagingRecord{
		ID:         uuid.New().String(),
		Listing:    l,
		DedupState: model.DedupUnique,
		SyncState:  model.SyncPending,
	}

	stored, inserted, err := d.Store.InsertIfAbsent(ctx, rec)
	if err != nil {
		return model.StagingRecord{}, fmt.Errorf("insert: %w", err)
	}
	if !inserted {
		// Outro worker venceu a corrida pelo mesmo fingerprint exato.
		return duplicateOf(l, stored.ID), nil
	}
	return stored, nil
}

func duplicateOf(l model.Listing, ownerID string) model.StagingRecord {
	return model.StagingRecord{
		Listing:     l,
		DedupState:  model.DedupDuplicate,
		DuplicateOf: ownerID,
	}
}

// hasFuzzyEvidence diz se o anúncio carrega algum dos campos que
// compõem o fingerprint fuzzy. Sem nenhum deles a comparação fuzzy
// juntaria anúncios sem relação, então ela é pulada.
func hasFuzzyEvidence(l model.Listing) bool {
	return l.City != "" || l.Neighborhood != "" ||
		l.Price != nil || l.Area != nil || l.Rooms != nil
}
