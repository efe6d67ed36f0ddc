package adapters_test

import (
	"context"
	"fmt"
	"sync"

	"news_ingest/internal/models"
	"news_ingest/internal/normalize"
)

// fakeStore — память вместо Postgres для тестов адаптеров.
type fakeStore struct {
	mu         sync.Mutex
	sources    map[string]models.Source
	categories []models.Category
	sourceMaps map[string]models.SourceCategoryMap
	nextID     int64
}

func newFakeStore(sources ...models.Source) *fakeStore {
	s := &fakeStore{
		sources:    make(map[string]models.Source),
		sourceMaps: make(map[string]models.SourceCategoryMap),
		nextID:     1,
	}
	for _, src := range sources {
		s.sources[src.Name] = src
	}
	return s
}

func (s *fakeStore) GetSourceByName(_ context.Context, name string) (models.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[name]
	if !ok {
		return models.Source{}, fmt.Errorf("no rows in result set")
	}
	return src, nil
}

func (s *fakeStore) FindOrCreateCategory(_ context.Context, name string, sourceID int64) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name && c.SourceID == sourceID {
			return c, nil
		}
	}
	c := models.Category{
		ID:             s.nextID,
		Name:           name,
		NormalizedName: normalize.Normalize(name),
		SourceID:       sourceID,
	}
	s.nextID++
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *fakeStore) UpsertSourceCategoryMap(_ context.Context, m models.SourceCategoryMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sourceMaps[fmt.Sprintf("%d/%s", m.SourceID, m.ProviderSourceID)] = m
	return nil
}

func (s *fakeStore) CategoryByProviderSourceID(_ context.Context, sourceID int64, providerSourceID string) (models.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.sourceMaps[fmt.Sprintf("%d/%s", sourceID, providerSourceID)]
	if !ok {
		return models.Category{}, false, nil
	}
	for _, c := range s.categories {
		if c.ID == m.CategoryID {
			return c, true, nil
		}
	}
	return models.Category{}, false, nil
}

func (s *fakeStore) categoryNames(sourceID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, c := range s.categories {
		if c.SourceID == sourceID {
			names = append(names, c.Name)
		}
	}
	return names
}
