package repository

import (
	"context"
	"sync"
	"time"

	"imovelsync/internal/model"
)

// MemoryStaging implementa StagingStore em memória. Serve o modo dry-run
// e os testes, com a mesma semântica do Postgres: unicidade por
// fingerprint exato e busca fuzzy devolvendo a linha mais antiga.
type MemoryStaging struct {
	mu      sync.Mutex
	byID    map[string]*model.StagingRecord
	byExact map[string]string
	order   []string
}

func NewMemoryStaging() *MemoryStaging {
	return &MemoryStaging{
		byID:    make(map[string]*model.StagingRecord),
		byExact: make(map[string]string),
	}
}

func (m *MemoryStaging) InsertIfAbsent(_ context.Context, rec model.StagingRecord) (model.StagingRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byExact[rec.Listing.FingerprintExact]; ok {
		return cloneRecord(m.byID[id]), false, nil
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	stored := cloneRecord(&rec)
	m.byID[rec.ID] = stored
	m.byExact[rec.Listing.FingerprintExact] = rec.ID
	m.order = append(m.order, rec.ID)
	return cloneRecord(stored), true, nil
}

func (m *MemoryStaging) FindByExact(_ context.Context, fp string) (*model.StagingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byExact[fp]
	if !ok {
		return nil, nil
	}
	rec := cloneRecord(m.byID[id])
	return &rec, nil
}

func (m *MemoryStaging) FindByFuzzy(_ context.Context, fp string) (*model.StagingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if m.byID[id].Listing.FingerprintFuzzy == fp {
			rec := cloneRecord(m.byID[id])
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *MemoryStaging) FillForward(_ context.Context, id string, l model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil
	}

	dst := &rec.Listing
	if dst.SourceURL == "" {
		dst.SourceURL = l.SourceURL
	}
	if dst.Title == "" {
		dst.Title = l.Title
	}
	if dst.Address == "" {
		dst.Address = l.Address
	}
	if dst.Neighborhood == "" {
		dst.Neighborhood = l.Neighborhood
	}
	if dst.City == "" {
		dst.City = l.City
	}
	if dst.Price == nil && l.Price != nil {
		v := *l.Price
		dst.Price = &v
	}
	if dst.Area == nil && l.Area != nil {
		v := *l.Area
		dst.Area = &v
	}
	if dst.Rooms == nil && l.Rooms != nil {
		v := *l.Rooms
		dst.Rooms = &v
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStaging) ListPendingSync(_ context.Context) ([]model.StagingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []model.StagingRecord
	for _, id := range m.order {
		rec := m.byID[id]
		if rec.DedupState != model.DedupUnique {
			continue
		}
		if rec.SyncState == model.SyncPending || rec.SyncState == model.SyncFailed {
			pending = append(pending, cloneRecord(rec))
		}
	}
	return pending, nil
}

func (m *MemoryStaging) MarkSynced(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.byID[id]; ok {
		rec.SyncState = model.SyncSynced
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MemoryStaging) MarkFailed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.byID[id]; ok && rec.SyncState != model.SyncSynced {
		rec.SyncState = model.SyncFailed
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MemoryStaging) Ping(context.Context) error { return nil }

// All devolve uma cópia de todas as linhas na ordem de inserção.
func (m *MemoryStaging) All() []model.StagingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.StagingRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneRecord(m.byID[id]))
	}
	return out
}

func cloneRecord(rec *model.StagingRecord) model.StagingRecord {
	out := *rec
	out.Listing = cloneListing(rec.Listing)
	return out
}

func cloneListing(l model.Listing) model.Listing {
	if l.Price != nil {
		v := *l.Price
		l.Price = &v
	}
	if l.Area != nil {
		v := *l.Area
		l.Area = &v
	}
	if l.Rooms != nil {
		v := *l.Rooms
		l.Rooms = &v
	}
	return l
}

// MemoryDestination implementa DestinationStore em memória, um anúncio
// por fingerprint exato.
type MemoryDestination struct {
	mu    sync.Mutex
	items map[string]model.Listing
}

func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{items: make(map[string]model.Listing)}
}

func (m *MemoryDestination) Upsert(_ context.Context, l model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.items[l.FingerprintExact]
	if !ok {
		m.items[l.FingerprintExact] = cloneListing(l)
		return nil
	}

	if cur.SourceURL == "" {
		cur.SourceURL = l.SourceURL
	}
	if cur.Title == "" {
		cur.Title = l.Title
	}
	if cur.Address == "" {
		cur.Address = l.Address
	}
	if cur.Neighborhood == "" {
		cur.Neighborhood = l.Neighborhood
	}
	if cur.City == "" {
		cur.City = l.City
	}
	if cur.Price == nil && l.Price != nil {
		v := *l.Price
		cur.Price = &v
	}
	if cur.Area == nil && l.Area != nil {
		v := *l.Area
		cur.Area = &v
	}
	if cur.Rooms == nil && l.Rooms != nil {
		v := *l.Rooms
		cur.Rooms = &v
	}
	m.items[l.FingerprintExact] = cur
	return nil
}

func (m *MemoryDestination) Get(fp string) (model.Listing, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.items[fp]
	if !ok {
		return model.Listing{}, false
	}
	return cloneListing(l), true
}

func (m *MemoryDestination) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryDestination) Ping(context.Context) error { return nil }

// MemoryRunLog implementa RunLogStore em memória.
type MemoryRunLog struct {
	mu   sync.Mutex
	runs []model.RunLog
}

func NewMemoryRunLog() *MemoryRunLog { return &MemoryRunLog{} }

func (m *MemoryRunLog) Append(_ context.Context, run model.RunLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, run)
	return nil
}

func (m *MemoryRunLog) ListRecent(_ context.Context, limit int) ([]model.RunLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]model.RunLog, 0, limit)
	for i := len(m.runs) - 1; i >= len(m.runs)-limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}
