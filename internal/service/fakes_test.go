package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

// fakeSamples - in-memory SpaceCacheRepository.
type fakeSamples struct {
	mu   sync.Mutex
	rows []models.SpaceCache
	now  time.Time
	err  error
}

func newFakeSamples() *fakeSamples {
	return &fakeSamples{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// add кладет сэмпл с явным временем.
func (f *fakeSamples) add(source string, at time.Time, payload interface{}) {
	data, _ := json.Marshal(payload)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, models.SpaceCache{
		ID:        uint(len(f.rows) + 1),
		Source:    source,
		FetchedAt: at,
		Payload:   data,
	})
}

func (f *fakeSamples) Write(ctx context.Context, source string, payload interface{}) (*models.SpaceCache, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.now = f.now.Add(time.Second)
	at := f.now
	f.mu.Unlock()

	f.add(source, at, payload)
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[len(f.rows)-1]
	return &row, nil
}

func (f *fakeSamples) bySource(source string) []models.SpaceCache {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SpaceCache
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Source == source {
			out = append(out, f.rows[i])
		}
	}
	return out
}

func (f *fakeSamples) Latest(ctx context.Context, source string) (*models.SpaceCache, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.bySource(source)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no %s samples", apperr.ErrNotFound, source)
	}
	return &rows[0], nil
}

func (f *fakeSamples) Recent(ctx context.Context, source string, n int) ([]models.SpaceCache, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.bySource(source)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func (f *fakeSamples) Range(ctx context.Context, source string, from, to time.Time) ([]models.SpaceCache, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SpaceCache
	for _, row := range f.bySource(source) {
		if !row.FetchedAt.Before(from) && !row.FetchedAt.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeSamples) Count(ctx context.Context, source string) (int64, error) {
	return int64(len(f.bySource(source))), f.err
}

type fakeOSDRRepo struct {
	docs  []models.Document
	items []models.OSDRItem
	count int64
	err   error
	limit int
}

func (f *fakeOSDRRepo) UpsertMany(ctx context.Context, docs []models.Document) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.docs = append(f.docs, docs...)
	return len(docs), nil
}

func (f *fakeOSDRRepo) GetByDatasetID(ctx context.Context, datasetID string) (*models.OSDRItem, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeOSDRRepo) List(ctx context.Context, limit int) ([]models.OSDRItem, error) {
	f.limit = limit
	return f.items, f.err
}

func (f *fakeOSDRRepo) Count(ctx context.Context) (int64, error) {
	return f.count, f.err
}

type fakeStore struct {
	value string
	err   error
	saved *models.Position
	ttl   time.Duration
}

func (f *fakeStore) ReadLatest(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.value, nil
}

func (f *fakeStore) SaveLatest(ctx context.Context, pos *models.Position, ttl time.Duration) error {
	f.saved = pos
	f.ttl = ttl
	return f.err
}

type fakeOpenNotify struct {
	pos   *models.Position
	err   error
	calls int
}

func (f *fakeOpenNotify) GetPosition(ctx context.Context) (*models.Position, error) {
	f.calls++
	return f.pos, f.err
}

type fakeISSClient struct {
	doc models.Document
	err error
}

func (f *fakeISSClient) GetCurrentPosition(ctx context.Context) (models.Document, error) {
	return f.doc, f.err
}

type fakeNASA struct {
	osdr     []models.Document
	apod     models.Document
	neo      models.Document
	donki    map[string][]models.Document
	errs     map[string]error
	neoDays  int
	donkiArg []string
}

func (f *fakeNASA) FetchOSDR(ctx context.Context) ([]models.Document, error) {
	return f.osdr, f.errs["osdr"]
}

func (f *fakeNASA) FetchAPOD(ctx context.Context, date string) (models.Document, error) {
	return f.apod, f.errs[models.SourceAPOD]
}

func (f *fakeNASA) FetchNEOFeed(ctx context.Context, days int) (models.Document, error) {
	f.neoDays = days
	return f.neo, f.errs[models.SourceNEO]
}

func (f *fakeNASA) FetchDONKI(ctx context.Context, eventType string, days int) ([]models.Document, error) {
	f.donkiArg = append(f.donkiArg, eventType)
	return f.donki[eventType], f.errs[eventType]
}

type fakeSpaceX struct {
	doc models.Document
	err error
}

func (f *fakeSpaceX) FetchNextLaunch(ctx context.Context) (models.Document, error) {
	return f.doc, f.err
}
