package normalize

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// Slug строит URL-совместимый слаг из заголовка статьи.
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// UntitledSlug возвращает слаг для статьи без заголовка,
// уникализированный случайным суффиксом.
func UntitledSlug() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "untitled-" + hex.EncodeToString(b)
}
