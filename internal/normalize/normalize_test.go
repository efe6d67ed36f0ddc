package normalize_test

import (
	"strings"
	"testing"

	"news_ingest/internal/normalize"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{"lowercase and trim", "  Technology ", "technology"},
		{"singular", "Sports", "sport"},
		{"already singular", "Sport", "sport"},
		{"ampersand", "Sports & Outdoors", "sports outdoor"},
		{"underscores with and", "sports_and_outdoors", "sports outdoor"},
		{"hyphen", "real-estate", "real estate"},
		{"ies plural", "Stories", "story"},
		{"es plural", "Businesses", "business"},
		{"uncountable", "News", "news"},
		{"uncountable politics", "Politics", "politics"},
		{"double space collapse", "arts    culture", "arts culture"},
		{"empty", "   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, normalize.Normalize(tc.in))
		})
	}
}

// Разные написания одной категории должны сводиться к одной канонической форме.
func TestNormalize_Equivalence(t *testing.T) {
	require.Equal(t,
		normalize.Normalize("Sports & Outdoors"),
		normalize.Normalize("sports_and_outdoors"),
	)
	require.Equal(t,
		normalize.Normalize("Sports"),
		normalize.Normalize("Sport"),
	)
}

func TestSlug(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"Hello, World!", "hello-world"},
		{"  Breaking: News 2024  ", "breaking-news-2024"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, normalize.Slug(tc.in))
	}
}

func TestUntitledSlug(t *testing.T) {
	s1 := normalize.UntitledSlug()
	s2 := normalize.UntitledSlug()

	require.True(t, strings.HasPrefix(s1, "untitled-"))
	require.NotEqual(t, s1, s2)
}
