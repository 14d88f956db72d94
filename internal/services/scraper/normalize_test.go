package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases ascii", "Target Co", "targetco"},
		{"strips whitespace", "  강남 수학학원  ", "강남수학학원"},
		{"strips punctuation", "미소치과(강남점)!", "미소치과강남점"},
		{"keeps digits", "24시 동물병원 2호점", "24시동물병원2호점"},
		{"mixed script", "Cafe 온도 - Seoul", "cafe온도seoul"},
		{"empty input", "", ""},
		{"symbols only", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{"Target Co", "강남 수학학원!", "Cafe 온도 - Seoul", "24시 동물병원"}
	for _, input := range inputs {
		once := NormalizeName(input)
		assert.Equal(t, once, NormalizeName(once), "normalizing twice must equal normalizing once: %q", input)
	}
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("Target Co", "target co"), "exact after normalization")
	assert.True(t, namesMatch("강남수학학원 본점", "강남수학학원"), "target contained in item")
	assert.True(t, namesMatch("수학학원", "강남 수학학원"), "item contained in target")
	assert.False(t, namesMatch("B Corp", "Target Co"))
	assert.False(t, namesMatch("", "Target Co"), "empty normalized form never matches")
	assert.False(t, namesMatch("Target Co", "!!!"))
}
