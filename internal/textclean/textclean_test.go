package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "  Soft   cotton tee ", "Soft cotton tee"},
		{"tags removed", "<p>Soft <b>cotton</b></p><p>tee</p>", "Soft cotton tee"},
		{"script dropped", "<div>Linen<script>alert('x')</script> shirt</div>", "Linen shirt"},
		{"entities decoded", "<p>Black &amp; white</p>", "Black & white"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestNormalizeComposesDiacritics(t *testing.T) {
	decomposed := "Grün"
	assert.Equal(t, "grün", Normalize(decomposed))
	assert.Equal(t, Normalize("GRÜN"), Normalize(decomposed))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"i", "don't", "like", "high-waisted", "jeans"},
		Words("i don't like... high-waisted jeans!!"))
	assert.Empty(t, Words("!!! ..."))
}

func TestSentences(t *testing.T) {
	got := Sentences("Love it!!! Bought it last week. Would buy again?! ")
	assert.Equal(t, []string{"Love it!!!", "Bought it last week.", "Would buy again?!"}, got)
	assert.Empty(t, Sentences(""))
	assert.Equal(t, []string{"no terminator"}, Sentences("no terminator"))
}

func TestSyllables(t *testing.T) {
	assert.Equal(t, 1, Syllables("cat"))
	assert.Equal(t, 3, Syllables("beautiful"))
	assert.Equal(t, 1, Syllables("rhythm"))
	assert.Equal(t, 1, Syllables("123"))
	assert.Equal(t, 2, Syllables("größe"))
}

func TestContainsTerm(t *testing.T) {
	text := Normalize("The Navy dress has pockets and a relaxed fit")
	assert.True(t, ContainsTerm(text, "navy"))
	assert.True(t, ContainsTerm(text, "relaxed fit"))
	assert.True(t, ContainsTerm(text, "pockets"))
	assert.False(t, ContainsTerm(text, "pocket"))
	assert.False(t, ContainsTerm(text, "red"))
	assert.False(t, ContainsTerm(text, ""))
	assert.True(t, ContainsTerm("the pocket, then pockets", "pockets"))
}

func TestCountTerms(t *testing.T) {
	text := "i bought it last week and love it"
	assert.Equal(t, 2, CountTerms(text, []string{"bought", "week", "month"}))
	assert.True(t, AnyTerm(text, []string{"love"}))
	assert.False(t, AnyTerm(text, nil))
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, "Élégant", UpperFirst("élégant"))
	assert.Equal(t, "great", LowerFirst("Great"))
	assert.Equal(t, "", LowerFirst(""))
	assert.True(t, HasDigit("size 38"))
	assert.False(t, HasDigit("size M"))
}
