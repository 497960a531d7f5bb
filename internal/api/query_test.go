package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStationQuery(t *testing.T) {
	tests := []struct {
		text string
		from string
		to   string
	}{
		{"trains from Howrah to Delhi", "howrah", "delhi"},
		{"FROM Mumbai", "mumbai", ""},
		{"going to Pune", "", "pune"},
		{"from goa to delhi", "", "delhi"},
		{"from", "", ""},
		{"to to Chennai", "", ""},
		{"from Howrah from Patna to Goa to Delhi", "howrah", ""},
		{"show me rajdhani", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			from, to := ParseStationQuery(tt.text)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestFindMatchingWords(t *testing.T) {
	assert.Equal(t, []string{"show", "rajdhani", "trains"}, FindMatchingWords("Show me Rajdhani trains"))
	assert.Equal(t, []string{"howrah", "delhi"}, FindMatchingWords("from Howrah to Delhi"))
	assert.Equal(t, []string{"12301"}, FindMatchingWords("no 12301"))
	assert.Equal(t, []string{"पुणे"}, FindMatchingWords("पुणे"))
	assert.Nil(t, FindMatchingWords("a to b"))
}
