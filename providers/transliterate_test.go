package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "MoscowCyrillic",
			input:    "Москва",
			expected: "Moskva",
		},
		{
			name:     "LowercaseCity",
			input:    "калуга",
			expected: "kaluga",
		},
		{
			name:     "MultiLetterMappings",
			input:    "Щёлково",
			expected: "Shchyolkovo",
		},
		{
			name:     "SoftAndHardSignsDropped",
			input:    "Тольятти",
			expected: "Tolyatti",
		},
		{
			name:     "UkrainianLetters",
			input:    "Київ",
			expected: "Kiyiv",
		},
		{
			name:     "LatinPassesThrough",
			input:    "London",
			expected: "London",
		},
		{
			name:     "MixedScriptAndPunctuation",
			input:    "Нью-Йорк",
			expected: "Nyu-York",
		},
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Transliterate(tt.input))
		})
	}
}
