package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicecart/backend/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "ADD Milk", "add milk"},
		{"strips punctuation", "add milk, please!", "add milk please"},
		{"collapses whitespace", "  add   two\tmilk  ", "add two milk"},
		{"folds accents", "¡Añade dos leches!", "anade dos leches"},
		{"splits apostrophes", "what's in my cart?", "what s in my cart"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestCanonicalCode(t *testing.T) {
	assert.Equal(t, "en", CanonicalCode("en-US"))
	assert.Equal(t, "en", CanonicalCode(" EN_gb "))
	assert.Equal(t, "es", CanonicalCode("es"))
	assert.Equal(t, "", CanonicalCode(""))
}

func TestNew(t *testing.T) {
	t.Run("rejects unregistered default", func(t *testing.T) {
		_, err := New("de", Builtin()...)
		assert.Error(t, err)
	})

	t.Run("rejects language without code", func(t *testing.T) {
		_, err := New("en", Language{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("keeps registration order", func(t *testing.T) {
		l := Default()
		assert.Equal(t, []string{"en", "es", "fr", "hi"}, l.Languages())
		assert.Equal(t, "en", l.DefaultLanguage())
	})
}

func TestDetect(t *testing.T) {
	l := Default()

	tests := []struct {
		name       string
		hint       string
		transcript string
		want       string
	}{
		{"supported hint wins", "es-ES", "add two milk", "es"},
		{"unsupported hint falls back to guessing", "de", "añade dos leches al carrito", "es"},
		{"empty hint guesses french", "", "ajoute deux pains dans mon panier", "fr"},
		{"empty hint guesses hindi", "", "do packet doodh cart mein daalo", "hi"},
		{"no vocabulary uses default", "", "zzz qqq", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Detect(tt.hint, tt.transcript))
		})
	}
}

func TestTable(t *testing.T) {
	l := Default()

	t.Run("falls back to default language", func(t *testing.T) {
		assert.Equal(t, "en", l.Table("xx").Code())
	})

	t.Run("matches multi-word keyword", func(t *testing.T) {
		table := l.Table("en")
		tokens := []string{"please", "look", "for", "rice"}
		intent, span, ok := table.MatchKeyword(tokens, 1)
		require.True(t, ok)
		assert.Equal(t, domain.IntentSearch, intent)
		assert.Equal(t, 2, span)
	})

	t.Run("prefers longest keyword", func(t *testing.T) {
		table := l.Table("hi")
		intent, span, ok := table.MatchKeyword([]string{"hata", "do"}, 0)
		require.True(t, ok)
		assert.Equal(t, domain.IntentRemove, intent)
		assert.Equal(t, 2, span)
	})

	t.Run("matches accented keyword after folding", func(t *testing.T) {
		table := l.Table("es")
		intent, _, ok := table.MatchKeyword(Tokens("Añade"), 0)
		require.True(t, ok)
		assert.Equal(t, domain.IntentAdd, intent)
	})

	t.Run("finds cart phrase anywhere", func(t *testing.T) {
		intent, ok := l.Table("en").MatchCartPhrase([]string{"can", "you", "show", "my", "cart"})
		require.True(t, ok)
		assert.Equal(t, domain.IntentViewCart, intent)
	})

	t.Run("applies corrections", func(t *testing.T) {
		got := l.Table("en").Correct([]string{"ad", "bred", "to", "kart"})
		assert.Equal(t, []string{"add", "bread", "to", "cart"}, got)
	})

	t.Run("maps number words", func(t *testing.T) {
		n, ok := l.Table("fr").Number("trois")
		require.True(t, ok)
		assert.Equal(t, 3, n)

		_, ok = l.Table("en").Number("milk")
		assert.False(t, ok)
	})

	t.Run("knows fillers", func(t *testing.T) {
		assert.True(t, l.Table("en").IsFiller("packets"))
		assert.False(t, l.Table("en").IsFiller("milk"))
	})
}

func TestParse(t *testing.T) {
	t.Run("loads extra language", func(t *testing.T) {
		data := []byte(`
languages:
  - code: de
    keywords:
      add: [hinzufügen, kaufen]
      remove: [entfernen]
      search: [suche]
    cart_phrases:
      view_cart: [zeige warenkorb]
    number_words: {eins: 1, zwei: 2}
    fillers: [den, die, das, warenkorb]
`)
		languages, err := Parse(data)
		require.NoError(t, err)
		require.Len(t, languages, 1)

		l, err := New("en", append(Builtin(), languages...)...)
		require.NoError(t, err)
		assert.True(t, l.Supports("de-DE"))

		table := l.Table("de")
		intent, _, ok := table.MatchKeyword([]string{"hinzufugen"}, 0)
		require.True(t, ok)
		assert.Equal(t, domain.IntentAdd, intent)

		intent, ok = table.MatchCartPhrase([]string{"zeige", "warenkorb"})
		require.True(t, ok)
		assert.Equal(t, domain.IntentViewCart, intent)
	})

	t.Run("rejects unknown intent key", func(t *testing.T) {
		_, err := Parse([]byte("languages:\n  - code: de\n    keywords:\n      dance: [tanzen]\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("rejects entry without code", func(t *testing.T) {
		_, err := Parse([]byte("languages:\n  - keywords:\n      add: [x]\n"))
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("languages: [:::"))
		assert.Error(t, err)
	})
}
