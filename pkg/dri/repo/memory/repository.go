package memory

import (
	"context"
	"math"
	"regexp"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-dri/pkg/dri"
)

// Repository implements dri.Repository using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	records map[string]*dri.Record
}

// New creates a new in-memory repository
func New() dri.Repository {
	return &Repository{
		records: make(map[string]*dri.Record),
	}
}

func (r *Repository) CreateRecord(ctx context.Context, record *dri.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	// Store a copy to avoid external modifications
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, id string) (*dri.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, dri.ErrRecordNotFound
	}
	return record.Clone(), nil
}

func (r *Repository) UpdateRecord(ctx context.Context, id string, update dri.RecordUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return dri.ErrRecordNotFound
	}
	update.Apply(record)
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return dri.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, params dri.ListRecordsParams) ([]*dri.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*dri.Record{}
	for _, record := range r.records {
		if params.Filter.Matches(record) {
			result = append(result, record.Clone())
		}
	}

	sortRecords(result, params.SortBy, params.Descending)

	if params.Offset > 0 {
		if params.Offset >= len(result) {
			return []*dri.Record{}, nil
		}
		result = result[params.Offset:]
	}
	if params.Limit > 0 && len(result) > params.Limit {
		result = result[:params.Limit]
	}
	return result, nil
}

func (r *Repository) CountRecords(ctx context.Context, filter dri.RecordFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, record := range r.records {
		if filter.Matches(record) {
			count++
		}
	}
	return count, nil
}

func (r *Repository) QueryRecords(ctx context.Context, field, prefix string) ([]*dri.Record, error) {
	pattern, err := regexp.Compile("(?i)" + dri.PrefixPattern(prefix))
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*dri.Record{}
	for _, record := range r.records {
		value, ok := dri.FieldValue(record, field)
		if ok && pattern.MatchString(value) {
			result = append(result, record.Clone())
		}
	}
	sortRecords(result, dri.SortByDateCreated, false)
	return result, nil
}

// sortRecords orders by the given timestamp. Records without a modification
// date sort before all others; ties fall back to the id for a stable order.
func sortRecords(records []*dri.Record, by dri.SortField, descending bool) {
	key := func(rec *dri.Record) int64 {
		if by == dri.SortByDateModified {
			if rec.DateModified == nil {
				return math.MinInt64
			}
			return rec.DateModified.UnixNano()
		}
		return rec.DateCreated.UnixNano()
	}
	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := key(records[i]), key(records[j])
		if ki == kj {
			return records[i].ID < records[j].ID
		}
		if descending {
			return ki > kj
		}
		return ki < kj
	})
}
