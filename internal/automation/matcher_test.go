package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInterested(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    bool
	}{
		{"plain keyword", "I am interested in this position", true},
		{"uppercase", "INTERESTED!!!", true},
		{"accented", "Je suis intérested", true},
		{"dm request", "Please DM me the details", true},
		{"hire me", "hire me please, I have 3 years experience", true},
		{"unrelated", "Congrats on the new office!", false},
		{"empty", "", false},
		{"keyword inside word counts", "unavailable next week", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInterested(tt.comment))
		})
	}
}

func TestNormalizeTextStripsAccents(t *testing.T) {
	assert.Equal(t, "can tho", normalizeText("Cần Thơ"))
	assert.Equal(t, "interesse", normalizeText("Intéressé"))
}
