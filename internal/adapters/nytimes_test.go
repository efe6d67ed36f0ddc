package adapters_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"news_ingest/internal/adapters"
	"news_ingest/internal/models"

	"github.com/stretchr/testify/require"
)

const nytFeedJSON = `{
	"results": [
		{
			"section": "science",
			"title": "Mars Rover Finds Something",
			"abstract": "A short abstract.",
			"uri": "nyt://article/abc-123",
			"url": "https://www.nytimes.com/2024/01/01/science/mars.html",
			"byline": "By John Writer",
			"published_date": "2024-01-01T10:00:00-05:00",
			"multimedia": [{"url": "https://static01.nyt.com/images/mars.jpg"}]
		}
	]
}`

func nytSource(apiURL string) models.Source {
	return models.Source{
		ID:             2,
		Name:           "nytimes",
		APIURL:         apiURL,
		APIKey:         "primary-key",
		FallbackAPIKey: "fallback-key",
		IsActive:       true,
	}
}

func TestNYTimes_FetchData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/svc/topstories/v2/science.json", r.URL.Path)
		require.Equal(t, "primary-key", r.URL.Query().Get("api-key"))
		w.Write([]byte(nytFeedJSON))
	}))
	defer server.Close()

	store := newFakeStore(nytSource(server.URL))
	adapter := adapters.NewYorkTimes(adapters.Deps{Client: newTestTransport(), Store: store})

	items, err := adapter.FetchData(context.Background(), nytSource(server.URL), "science")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

// Оба ключа упёрлись в лимит: прогон завершается пустым списком без ошибки.
func TestNYTimes_FetchData_RateLimitBothKeys(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	store := newFakeStore(nytSource(server.URL))
	adapter := adapters.NewYorkTimes(adapters.Deps{Client: newTestTransport(), Store: store})

	items, err := adapter.FetchData(context.Background(), nytSource(server.URL), "science")
	require.NoError(t, err)
	require.Empty(t, items)
	require.Equal(t, 2, calls)
}

func TestNYTimes_MapData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nytFeedJSON))
	}))
	defer server.Close()

	src := nytSource(server.URL)
	store := newFakeStore(src)
	adapter := adapters.NewYorkTimes(adapters.Deps{Client: newTestTransport(), Store: store})

	items, err := adapter.FetchData(context.Background(), src, "science")
	require.NoError(t, err)
	require.Len(t, items, 1)

	attrs, err := adapter.MapData(context.Background(), src.ID, items[0])
	require.NoError(t, err)
	require.Equal(t, "nyt://article/abc-123", attrs.ExternalID)
	require.Equal(t, src.ID, attrs.SourceID)
	require.Equal(t, "Mars Rover Finds Something", attrs.Title)
	require.Equal(t, "mars-rover-finds-something", attrs.Slug)
	require.Equal(t, "A short abstract.", attrs.Description)
	// lead_paragraph отсутствует — контент падает на abstract
	require.Equal(t, "A short abstract.", attrs.Content)
	require.Equal(t, "https://www.nytimes.com/2024/01/01/science/mars.html", attrs.URL)
	require.Equal(t, "https://static01.nyt.com/images/mars.jpg", attrs.ImageURL)
	require.Equal(t, "By John Writer", attrs.Author)
	require.NotNil(t, attrs.CategoryID)

	loc := time.FixedZone("", -5*3600)
	require.True(t, attrs.PublishedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, loc)))

	require.Equal(t, []string{"science"}, store.categoryNames(src.ID))
}

func TestNYTimes_MapData_NoURI(t *testing.T) {
	store := newFakeStore(nytSource("http://unused"))
	adapter := adapters.NewYorkTimes(adapters.Deps{Client: newTestTransport(), Store: store})

	_, err := adapter.MapData(context.Background(), 2, []byte(`{"title": "No uri"}`))
	require.Error(t, err)
}

// Список секций фиксированный: эндпоинты NYT не отдают метаданные категорий.
func TestNYTimes_SyncCategories(t *testing.T) {
	src := nytSource("http://unused")
	store := newFakeStore(src)
	adapter := adapters.NewYorkTimes(adapters.Deps{Client: newTestTransport(), Store: store})

	require.NoError(t, adapter.SyncCategories(context.Background(), src))

	names := store.categoryNames(src.ID)
	require.Len(t, names, 25)
	require.Contains(t, names, "home")
	require.Contains(t, names, "technology")
	require.Contains(t, names, "world")
}
