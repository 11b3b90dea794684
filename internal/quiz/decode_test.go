package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/triviaflash/internal/quiz"
)

func TestDecodeHTML(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "Paris", want: "Paris"},
		{name: "quotes", raw: "&quot;Hello&quot;", want: `"Hello"`},
		{name: "apostrophe", raw: "It&#039;s", want: "It's"},
		{name: "ampersand", raw: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "accented", raw: "Pok&eacute;mon", want: "Pokémon"},
		{name: "hex reference", raw: "&#x263A;", want: "☺"},
		{name: "unknown entity passes through", raw: "&foo; stays", want: "&foo; stays"},
		{name: "bare ampersand", raw: "R&D", want: "R&D"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quiz.DecodeHTML(tt.raw))
		})
	}
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "", quiz.CapitalizeFirst(""))
	assert.Equal(t, "A", quiz.CapitalizeFirst("a"))
	assert.Equal(t, "ÄRger", quiz.CapitalizeFirst("äRger"))
	assert.Equal(t, "SSen", quiz.CapitalizeFirst("ßen"))
}

func TestNormalizeName(t *testing.T) {
	name, ok := quiz.NormalizeName("  alice  ")
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)

	_, ok = quiz.NormalizeName(" \t ")
	assert.False(t, ok)
}
