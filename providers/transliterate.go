package providers

import "strings"

// The upstream geocoder is unreliable with Cyrillic place names: a city that
// exists under its Latin spelling is often reported as not found when queried
// in Cyrillic. Transliterate maps each Cyrillic character to its closest
// Latin phonetic equivalent; characters without a mapping pass through
// unchanged.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	'і': "i", 'ї': "yi", 'є': "ye", 'ґ': "g",
}

// Transliterate converts Cyrillic text to a Latin-alphabet query term.
// Uppercase letters keep their case on the first output character.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		lower := toLowerCyrillic(r)
		mapped, ok := translitTable[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower != r && mapped != "" {
			b.WriteString(strings.ToUpper(mapped[:1]) + mapped[1:])
		} else {
			b.WriteString(mapped)
		}
	}
	return b.String()
}

func toLowerCyrillic(r rune) rune {
	switch {
	case r >= 'А' && r <= 'Я':
		return r + ('а' - 'А')
	case r == 'Ё':
		return 'ё'
	case r == 'І':
		return 'і'
	case r == 'Ї':
		return 'ї'
	case r == 'Є':
		return 'є'
	case r == 'Ґ':
		return 'ґ'
	default:
		return r
	}
}
