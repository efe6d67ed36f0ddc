// Package normalize приводит названия категорий к канонической форме
// для нечёткого сопоставления между источниками.
package normalize

import "strings"

var separators = strings.NewReplacer("&", " ", "-", " ", "_", " ")

// Слова, не имеющие формы единственного числа.
var uncountable = map[string]bool{
	"news":     true,
	"series":   true,
	"politics": true,
	"upshot":   true,
}

// Normalize возвращает каноническую форму названия категории:
// нижний регистр, разделители и союз "and" заменены пробелом,
// последнее слово приведено к единственному числу, пробелы схлопнуты.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = separators.Replace(s)
	s = strings.ReplaceAll(s, " and ", " ")

	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = singular(words[len(words)-1])

	return strings.Join(words, " ")
}

func singular(word string) string {
	if uncountable[word] {
		return word
	}
	switch {
	case len(word) > 3 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 3 && (strings.HasSuffix(word, "ses") ||
		strings.HasSuffix(word, "xes") ||
		strings.HasSuffix(word, "zes") ||
		strings.HasSuffix(word, "ches") ||
		strings.HasSuffix(word, "shes")):
		return word[:len(word)-2]
	case len(word) > 1 && strings.HasSuffix(word, "s") &&
		!strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:len(word)-1]
	}
	return word
}
